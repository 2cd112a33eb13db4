package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/majorcatalog/internal/model"
	"github.com/stemsi/majorcatalog/internal/repository"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// ErrInvalidEntry is returned by ImportCatalog for rows missing an id or name.
var ErrInvalidEntry = errors.New("invalid catalog entry")

type MajorService interface {
	GetMajor(ctx context.Context, id string) (*model.Major, error)
	ListMajors(ctx context.Context, q model.ListMajorsQuery) (*model.MajorPage, error)
	ImportCatalog(ctx context.Context, entries []model.CatalogEntry) (int, error)
}

type majorService struct {
	majorRepo repository.MajorRepository
	log       zerolog.Logger
}

func NewMajorService(majorRepo repository.MajorRepository, log zerolog.Logger) MajorService {
	return &majorService{
		majorRepo: majorRepo,
		log:       log.With().Str("component", "major_service").Logger(),
	}
}

func (s *majorService) GetMajor(ctx context.Context, id string) (*model.Major, error) {
	return s.majorRepo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *majorService) ListMajors(ctx context.Context, q model.ListMajorsQuery) (*model.MajorPage, error) {
	filter := NormalizeFilter(q)

	majors, total, err := s.majorRepo.List(ctx, filter)
	if err != nil {
		s.log.Error().Err(err).Str("subject_id", filter.SubjectID).Msg("failed to list majors")
		return nil, err
	}

	return &model.MajorPage{
		Data: majors,
		Pagination: model.Pagination{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalCount: total,
			TotalPages: model.TotalPages(total, filter.PageSize),
		},
	}, nil
}

// NormalizeFilter applies listing defaults and bounds to a query.
func NormalizeFilter(q model.ListMajorsQuery) model.MajorFilter {
	f := model.MajorFilter{
		SubjectID: strings.TrimSpace(q.Subject),
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

func (s *majorService) ImportCatalog(ctx context.Context, entries []model.CatalogEntry) (int, error) {
	seen := make(map[string]int, len(entries))
	clean := make([]model.CatalogEntry, 0, len(entries))
	for i, e := range entries {
		e = trimEntry(e)
		if e.CategoryID == "" || e.SubjectID == "" || e.MajorID == "" || e.MajorName == "" {
			return 0, fmt.Errorf("row %d: %w", i+1, ErrInvalidEntry)
		}
		// Later rows win for a repeated major id.
		if prev, ok := seen[e.MajorID]; ok {
			clean[prev] = e
			continue
		}
		seen[e.MajorID] = len(clean)
		clean = append(clean, e)
	}
	if len(clean) == 0 {
		return 0, nil
	}

	n, err := s.majorRepo.Import(ctx, clean)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int("count", n).Msg("catalog imported")
	return n, nil
}

func trimEntry(e model.CatalogEntry) model.CatalogEntry {
	return model.CatalogEntry{
		CategoryID:   strings.TrimSpace(e.CategoryID),
		CategoryName: strings.TrimSpace(e.CategoryName),
		SubjectID:    strings.TrimSpace(e.SubjectID),
		SubjectName:  strings.TrimSpace(e.SubjectName),
		MajorID:      strings.TrimSpace(e.MajorID),
		MajorName:    strings.TrimSpace(e.MajorName),
	}
}
