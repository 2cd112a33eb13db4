package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/majorcatalog/internal/catalog"
	"github.com/stemsi/majorcatalog/internal/model"
)

// MajorReader is the read side of the catalog used by the detail page.
type MajorReader interface {
	GetMajor(ctx context.Context, id string) (*model.Major, error)
	ListMajors(ctx context.Context, filter model.MajorFilter) (*model.MajorPage, error)
}

// DetailService loads a major together with the other majors of its subject.
type DetailService struct {
	reader MajorReader
	log    zerolog.Logger
}

func NewDetailService(reader MajorReader, log zerolog.Logger) *DetailService {
	return &DetailService{
		reader: reader,
		log:    log.With().Str("component", "detail_service").Logger(),
	}
}

// Load fetches the detail record, then the first related page for its
// subject. The related request is only made once the detail succeeded.
func (s *DetailService) Load(ctx context.Context, id string) model.DetailResult {
	major, err := s.reader.GetMajor(ctx, id)
	if err == nil && (major == nil || major.MajorID == "") {
		err = fmt.Errorf("empty detail record for %q: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		outcome := model.OutcomeUnavailable
		if errors.Is(err, catalog.ErrNotFound) {
			outcome = model.OutcomeNotFound
		}
		if !cancelled(ctx) {
			s.log.Error().Err(err).
				Str("major_id", id).
				Str("outcome", string(outcome)).
				Msg("failed to fetch major details")
		}
		return model.DetailResult{Outcome: outcome, Err: err}
	}

	result := model.DetailResult{
		Outcome: model.OutcomePopulated,
		Major:   major,
		Related: []model.Major{},
	}

	page, err := s.reader.ListMajors(ctx, model.MajorFilter{
		SubjectID: major.SubjectID,
		Page:      model.RelatedPage,
		PageSize:  model.RelatedPageSize,
	})
	if err != nil {
		if !cancelled(ctx) {
			s.log.Error().Err(err).
				Str("major_id", major.MajorID).
				Str("subject_id", major.SubjectID).
				Msg("failed to fetch related majors")
		}
		result.RelatedErr = err
		return result
	}

	pagination := page.Pagination
	result.RelatedPagination = &pagination
	result.Related = ExcludeMajor(page.Data, major.MajorID)
	return result
}

// cancelled reports whether the caller abandoned the load. Deadline expiry
// is not abandonment and is still logged.
func cancelled(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

// ExcludeMajor returns the majors whose id differs from id, in order.
func ExcludeMajor(majors []model.Major, id string) []model.Major {
	out := make([]model.Major, 0, len(majors))
	for _, m := range majors {
		if m.MajorID != id {
			out = append(out, m)
		}
	}
	return out
}
