package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/stemsi/majorcatalog/internal/config"
	"github.com/stemsi/majorcatalog/internal/database"
	"github.com/stemsi/majorcatalog/internal/logger"
	"github.com/stemsi/majorcatalog/internal/model"
	"github.com/stemsi/majorcatalog/internal/repository"
	"github.com/stemsi/majorcatalog/internal/service"
	"github.com/xuri/excelize/v2"
)

// Spreadsheet columns, left to right.
var columns = []string{"category_id", "category_name", "subject_id", "subject_name", "major_id", "major_name"}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		sheet  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "seed-majors <file.xlsx>",
		Short: "Import the major catalog from a spreadsheet",
		Long: `Reads categories, subjects and majors from an .xlsx file and upserts
them into the catalog database. The first row is a header with the columns
category_id, category_name, subject_id, subject_name, major_id, major_name.`,
		Example: `  seed-majors majors.xlsx
  seed-majors --sheet 2024 --dry-run majors.xlsx`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readCatalog(args[0], sheet)
			if err != nil {
				return err
			}
			cmd.Printf("Read %d rows from %s\n", len(entries), args[0])
			if dryRun {
				return nil
			}
			return importEntries(cmd, entries)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet to read (defaults to the first sheet)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the file without writing to the database")

	return cmd
}

func importEntries(cmd *cobra.Command, entries []model.CatalogEntry) error {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	svc := service.NewMajorService(repository.NewMajorRepository(pool), log)
	n, err := svc.ImportCatalog(ctx, entries)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Seed completed! Imported %d majors.\n", n)
	return nil
}

// readCatalog parses the catalog sheet of an .xlsx file. Blank rows are
// skipped; short rows are padded so validation reports them.
func readCatalog(path, sheet string) ([]model.CatalogEntry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	entries := make([]model.CatalogEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		cell := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		entries = append(entries, model.CatalogEntry{
			CategoryID:   cell(0),
			CategoryName: cell(1),
			SubjectID:    cell(2),
			SubjectName:  cell(3),
			MajorID:      cell(4),
			MajorName:    cell(5),
		})
	}
	return entries, nil
}

func checkHeader(row []string) error {
	for i, want := range columns {
		if i >= len(row) || !strings.EqualFold(strings.TrimSpace(row[i]), want) {
			return fmt.Errorf("unexpected header: column %d should be %q", i+1, want)
		}
	}
	return nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
