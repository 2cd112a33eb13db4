package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/majorcatalog/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL + "/", Timeout: time.Second})
}

func TestClient_GetMajor_decodesRecord(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/majors/0809", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"major_id":"0809","major_name":"计算机科学与技术","subject_id":"08","subject_name":"工学","category_name":"工学门类"}`))
	})

	got, err := c.GetMajor(context.Background(), "0809")
	require.NoError(t, err)
	assert.Equal(t, &model.Major{
		MajorID:      "0809",
		MajorName:    "计算机科学与技术",
		SubjectID:    "08",
		SubjectName:  "工学",
		CategoryName: "工学门类",
	}, got)
}

func TestClient_GetMajor_escapesID(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/majors/a%2Fb", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"major_id":"a/b"}`))
	})

	got, err := c.GetMajor(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", got.MajorID)
}

func TestClient_GetMajor_notFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetMajor(context.Background(), "9999")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnavailable)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestClient_GetMajor_emptyBodyIsNotFound(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`null`, `{}`, `{"major_name":"计算机科学与技术"}`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		})

		got, err := c.GetMajor(context.Background(), "0809")
		assert.Nil(t, got, body)
		assert.ErrorIs(t, err, ErrNotFound, body)
		assert.NotErrorIs(t, err, ErrUnavailable, body)
	}
}

func TestClient_GetMajor_serverErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetMajor(context.Background(), "0809")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_GetMajor_badBodyIsUnavailable(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := c.GetMajor(context.Background(), "0809")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_GetMajor_transportErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(Options{BaseURL: base, Timeout: time.Second})
	_, err := c.GetMajor(context.Background(), "0809")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_GetMajor_cancelledContext(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetMajor(ctx, "0809")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_ListMajors_buildsRelatedQuery(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/majors", r.URL.Path)
		assert.Equal(t, "subject=08&page=1&page_size=12", r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"data":[{"major_id":"0809"},{"major_id":"0810"}],"pagination":{"page":1,"page_size":12,"total_count":2,"total_pages":1}}`))
	})

	page, err := c.ListMajors(context.Background(), model.MajorFilter{SubjectID: "08", Page: 1, PageSize: 12})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "0810", page.Data[1].MajorID)
	assert.Equal(t, model.Pagination{Page: 1, PageSize: 12, TotalCount: 2, TotalPages: 1}, page.Pagination)
}

func TestClient_ListMajors_failure(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.ListMajors(context.Background(), model.MajorFilter{SubjectID: "08", Page: 1, PageSize: 12})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
}
