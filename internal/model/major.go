package model

// Major represents an academic degree program as served by the catalog.
type Major struct {
	MajorID      string `json:"major_id"`
	MajorName    string `json:"major_name"`
	SubjectID    string `json:"subject_id"`
	SubjectName  string `json:"subject_name"`
	CategoryName string `json:"category_name"`
}

// Pagination describes one page of a major listing.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// MajorPage is a page of majors with its pagination metadata.
type MajorPage struct {
	Data       []Major    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// MajorFilter selects a page of majors. An empty SubjectID lists all majors.
type MajorFilter struct {
	SubjectID string
	Page      int
	PageSize  int
}

// Offset returns the row offset of the filter's page.
func (f MajorFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// ListMajorsQuery is the query string accepted by the major listing endpoint.
type ListMajorsQuery struct {
	Subject  string `form:"subject" json:"subject" binding:"omitempty,max=32"`
	Page     int    `form:"page" json:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" json:"page_size" binding:"omitempty,min=1,max=100"`
}

// Related majors are always read from the first page of twelve.
const (
	RelatedPage     = 1
	RelatedPageSize = 12
)

// TotalPages returns how many pages of size pageSize hold total items.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// CatalogEntry is one imported row of the major catalog.
type CatalogEntry struct {
	CategoryID   string
	CategoryName string
	SubjectID    string
	SubjectName  string
	MajorID      string
	MajorName    string
}
