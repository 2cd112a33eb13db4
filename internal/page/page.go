// Package page holds the HTML templates of the major detail site.
package page

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/stemsi/majorcatalog/internal/model"
)

//go:embed templates/*.tmpl
var files embed.FS

// Template names, one per rendered state.
const (
	Detail      = "detail"
	Loading     = "loading"
	NotFound    = "not_found"
	Unavailable = "unavailable"
)

// Data is what every page template receives.
type Data struct {
	Title              string
	MajorID            string
	Major              *model.Major
	Related            []model.Major
	HighSchoolSubjects []string
	PageURL            string
	EventsURL          string
}

// Templates parses the embedded templates.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(files, "templates/*.tmpl")
}

// MustTemplates is Templates for program start-up.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// DetailURL is the page address of a major.
func DetailURL(id string) string {
	return "/detail/" + url.PathEscape(id)
}

// ForState picks the template and HTTP status for a view snapshot.
// Anything that has not settled renders as loading.
func ForState(s model.DetailState) (string, int, Data) {
	data := Data{
		MajorID:   s.MajorID,
		PageURL:   DetailURL(s.MajorID),
		EventsURL: DetailURL(s.MajorID) + "/events",
	}

	switch s.Status {
	case model.StatusPopulated:
		data.Title = s.Major.MajorName
		data.Major = s.Major
		data.Related = s.Related
		data.HighSchoolSubjects = model.HighSchoolSubjects
		return Detail, http.StatusOK, data
	case model.StatusNotFound:
		data.Title = "Major not found"
		return NotFound, http.StatusNotFound, data
	case model.StatusUnavailable:
		data.Title = "Major information is temporarily unavailable"
		return Unavailable, http.StatusServiceUnavailable, data
	default:
		data.Title = "Loading..."
		return Loading, http.StatusOK, data
	}
}
