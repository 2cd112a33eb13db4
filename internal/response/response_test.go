package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/majorcatalog/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", h)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFail_writesEnvelope(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		Fail(c, http.StatusNotFound, ErrMajorNotFound)
	}, http.Header{HeaderRequestID: []string{"req-1"}})

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.Data)
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrMajorNotFound, body.Error.Code)
	assert.Equal(t, "Major not found", body.Error.Message)
	assert.Equal(t, "req-1", body.Metadata.RequestID)
}

func TestSuccessWithPagination_usesCatalogWireNames(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		SuccessWithPagination(c, http.StatusOK, []model.Major{{MajorID: "0809"}},
			&model.Pagination{Page: 1, PageSize: 12, TotalCount: 1, TotalPages: 1})
	}, nil)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.JSONEq(t, `{"page":1,"page_size":12,"total_count":1,"total_pages":1}`, string(raw["pagination"]))
	assert.JSONEq(t, `[{"major_id":"0809","major_name":"","subject_id":"","subject_name":"","category_name":""}]`, string(raw["data"]))
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestGetMessage_unknownCode(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred.", GetMessage(ErrCode("NOPE")))
}
