package model

import "time"

// LoadOutcome is the typed result of loading a major's detail.
type LoadOutcome string

const (
	OutcomePopulated   LoadOutcome = "populated"
	OutcomeNotFound    LoadOutcome = "not_found"
	OutcomeUnavailable LoadOutcome = "unavailable"
	// OutcomeCancelled is only recorded, never rendered: the load was
	// superseded before it settled.
	OutcomeCancelled LoadOutcome = "cancelled"
)

// DetailResult is what one detail load produced.
type DetailResult struct {
	Outcome LoadOutcome
	Major   *Major
	// Related never contains Major itself.
	Related []Major
	// RelatedPagination is the metadata of the related page as returned by
	// the catalog. Nil when the related fetch failed.
	RelatedPagination *Pagination
	// RelatedErr is set when the detail loaded but the related page did not.
	RelatedErr error
	Err        error
}

// ViewStatus is the state a detail view is in.
type ViewStatus string

const (
	StatusIdle        ViewStatus = "idle"
	StatusLoading     ViewStatus = "loading"
	StatusPopulated   ViewStatus = ViewStatus(OutcomePopulated)
	StatusNotFound    ViewStatus = ViewStatus(OutcomeNotFound)
	StatusUnavailable ViewStatus = ViewStatus(OutcomeUnavailable)
)

// Settled reports whether the status is terminal for the current id.
func (s ViewStatus) Settled() bool {
	switch s {
	case StatusPopulated, StatusNotFound, StatusUnavailable:
		return true
	}
	return false
}

// DetailState is an immutable snapshot of a detail view.
type DetailState struct {
	MajorID   string     `json:"major_id"`
	Status    ViewStatus `json:"status"`
	Loading   bool       `json:"loading"`
	Major     *Major     `json:"major"`
	Related   []Major    `json:"related"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HighSchoolSubjects are the secondary-school courses shown on every
// detail page.
var HighSchoolSubjects = []string{"数学", "物理", "化学", "生物", "地理"}
