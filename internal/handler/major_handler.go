package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/majorcatalog/internal/model"
	"github.com/stemsi/majorcatalog/internal/repository"
	"github.com/stemsi/majorcatalog/internal/response"
	"github.com/stemsi/majorcatalog/internal/service"
	"github.com/stemsi/majorcatalog/internal/validator"
)

type MajorHandler struct {
	majorService service.MajorService
}

func NewMajorHandler(majorService service.MajorService) *MajorHandler {
	return &MajorHandler{majorService: majorService}
}

// GetByID returns the bare major record, the shape the detail page decodes.
func (h *MajorHandler) GetByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	major, err := h.majorService.GetMajor(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMajorNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrMajorNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, major)
}

// List returns one page of majors, optionally restricted to a subject.
func (h *MajorHandler) List(c *gin.Context) {
	var q model.ListMajorsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	page, err := h.majorService.ListMajors(c.Request.Context(), q)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, page.Data, &page.Pagination)
}
