package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/majorcatalog/internal/model"
)

// ErrMajorNotFound is returned when no major has the requested id.
var ErrMajorNotFound = errors.New("major not found")

type MajorRepository interface {
	GetByID(ctx context.Context, id string) (*model.Major, error)
	List(ctx context.Context, filter model.MajorFilter) ([]model.Major, int, error)
	Import(ctx context.Context, entries []model.CatalogEntry) (int, error)
}

type majorRepository struct {
	db *pgxpool.Pool
}

func NewMajorRepository(db *pgxpool.Pool) MajorRepository {
	return &majorRepository{db: db}
}

const majorColumns = `m.major_id, m.major_name, s.subject_id, s.subject_name, c.category_name`

const majorJoin = `
	FROM majors m
	JOIN subjects s ON s.subject_id = m.subject_id
	JOIN categories c ON c.category_id = s.category_id`

func (r *majorRepository) GetByID(ctx context.Context, id string) (*model.Major, error) {
	query := `SELECT ` + majorColumns + majorJoin + ` WHERE m.major_id = $1`
	m := &model.Major{}
	err := r.db.QueryRow(ctx, query, id).Scan(&m.MajorID, &m.MajorName, &m.SubjectID, &m.SubjectName, &m.CategoryName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMajorNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List returns one page of majors ordered by id, plus the total match count.
func (r *majorRepository) List(ctx context.Context, filter model.MajorFilter) ([]model.Major, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM majors m WHERE ($1::text = '' OR m.subject_id = $1)`
	if err := r.db.QueryRow(ctx, countQuery, filter.SubjectID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count majors: %w", err)
	}

	query := `SELECT ` + majorColumns + majorJoin + `
		WHERE ($1::text = '' OR m.subject_id = $1)
		ORDER BY m.major_id ASC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, filter.SubjectID, filter.PageSize, filter.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list majors: %w", err)
	}
	defer rows.Close()

	majors := make([]model.Major, 0, filter.PageSize)
	for rows.Next() {
		var m model.Major
		if err := rows.Scan(&m.MajorID, &m.MajorName, &m.SubjectID, &m.SubjectName, &m.CategoryName); err != nil {
			return nil, 0, err
		}
		majors = append(majors, m)
	}
	return majors, total, rows.Err()
}

// Import upserts categories, subjects and majors in one transaction.
func (r *majorRepository) Import(ctx context.Context, entries []model.CatalogEntry) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`INSERT INTO categories (category_id, category_name) VALUES ($1, $2)
			ON CONFLICT (category_id) DO UPDATE SET category_name = EXCLUDED.category_name`,
			e.CategoryID, e.CategoryName)
		batch.Queue(`INSERT INTO subjects (subject_id, subject_name, category_id) VALUES ($1, $2, $3)
			ON CONFLICT (subject_id) DO UPDATE SET subject_name = EXCLUDED.subject_name, category_id = EXCLUDED.category_id`,
			e.SubjectID, e.SubjectName, e.CategoryID)
		batch.Queue(`INSERT INTO majors (major_id, major_name, subject_id) VALUES ($1, $2, $3)
			ON CONFLICT (major_id) DO UPDATE SET major_name = EXCLUDED.major_name, subject_id = EXCLUDED.subject_id, updated_at = NOW()`,
			e.MajorID, e.MajorName, e.SubjectID)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("import batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(entries), nil
}
