package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/majorcatalog/internal/middleware"
	"github.com/stemsi/majorcatalog/internal/model"
	"github.com/stemsi/majorcatalog/internal/page"
	"github.com/stemsi/majorcatalog/internal/response"
	"github.com/stemsi/majorcatalog/internal/view"
)

const (
	detailKeepAlive = 15 * time.Second

	// Catalog ids are short codes; anything longer cannot exist.
	maxMajorIDLength = 64

	// settledParam marks the reload the loading page does once its event
	// stream reports a settled state.
	settledParam = "settled"
)

func validMajorID(id string) bool {
	return id != "" && len(id) <= maxMajorIDLength
}

// DetailHandler serves the major detail page and its live state.
type DetailHandler struct {
	registry   *view.Registry
	renderWait time.Duration
	keepAlive  time.Duration
	log        zerolog.Logger
}

func NewDetailHandler(registry *view.Registry, renderWait time.Duration, log zerolog.Logger) *DetailHandler {
	return &DetailHandler{
		registry:   registry,
		renderWait: renderWait,
		keepAlive:  detailKeepAlive,
		log:        log.With().Str("component", "detail_handler").Logger(),
	}
}

func (h *DetailHandler) viewOf(c *gin.Context) *view.DetailView {
	return h.registry.Get(middleware.GetViewerID(c))
}

// Page godoc
// GET /detail/:id
// Starts (or joins) the load for :id and renders whatever state the view
// reaches within the render wait. With ?settled=1 a view already holding :id
// is rendered as is instead of being reloaded.
func (h *DetailHandler) Page(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if !validMajorID(id) {
		name, status, data := page.ForState(model.DetailState{MajorID: id, Status: model.StatusNotFound})
		c.HTML(status, name, data)
		return
	}

	v := h.viewOf(c)
	var settled <-chan struct{}
	if s := v.Snapshot(); c.Query(settledParam) == "1" && s.MajorID == id && s.Status != model.StatusIdle {
		settled = v.Settled()
	} else {
		settled = v.Navigate(id)
	}

	if h.renderWait > 0 {
		timer := time.NewTimer(h.renderWait)
		defer timer.Stop()
		select {
		case <-settled:
		case <-timer.C:
		case <-c.Request.Context().Done():
			return
		}
	}

	s := v.Snapshot()
	if s.MajorID != id {
		// Another tab of the same viewer navigated meanwhile.
		s = model.DetailState{MajorID: id, Status: model.StatusLoading, Loading: true}
	}

	name, status, data := page.ForState(s)
	c.HTML(status, name, data)
}

// State godoc
// GET /detail/:id/state
func (h *DetailHandler) State(c *gin.Context) {
	id := c.Param("id")
	s := h.viewOf(c).Snapshot()
	if s.MajorID != id {
		response.Fail(c, http.StatusConflict, response.ErrViewSuperseded)
		return
	}
	response.Success(c, http.StatusOK, s)
}

// Events godoc
// GET /detail/:id/events
// Streams a "state" event now and on every change of the view. When the
// viewer moves on to another id a "superseded" event ends the stream.
func (h *DetailHandler) Events(c *gin.Context) {
	id := c.Param("id")
	if !validMajorID(id) {
		response.Fail(c, http.StatusNotFound, response.ErrMajorNotFound)
		return
	}
	viewerID := middleware.GetViewerID(c)
	v := h.registry.Get(viewerID)
	if v.Snapshot().Status == model.StatusIdle {
		v.Navigate(id)
	}

	ctx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	send := true
	for {
		changes := v.Changes()
		if send {
			s := v.Snapshot()
			if s.MajorID != id {
				c.SSEvent("superseded", gin.H{"major_id": s.MajorID})
				c.Writer.Flush()
				return
			}
			c.SSEvent("state", s)
			c.Writer.Flush()
		}

		select {
		case <-ctx.Done():
			return
		case <-h.registry.Done():
			return
		case <-changes:
			send = true
		case <-keepAlive.C:
			h.registry.Touch(viewerID)
			_, _ = c.Writer.WriteString(": keep-alive\n\n")
			c.Writer.Flush()
			send = false
		}
	}
}
