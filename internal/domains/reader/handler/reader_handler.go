package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookrental-backend/internal/domains/reader/model"
	"bookrental-backend/internal/domains/reader/service"
	"bookrental-backend/internal/shared/response"
	"bookrental-backend/internal/shared/utils"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

func parseReaderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid reader ID")
		return uuid.Nil, false
	}
	return id, true
}

// CreateReader - POST /api/v1/readers
func (h *Handler) CreateReader(c *gin.Context) {
	var req model.CreateReaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	reader, err := h.service.CreateReader(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, model.NewReaderResponse(reader))
}

// ListReaders - GET /api/v1/readers
// Query params: search, category, include_inactive, page, limit
func (h *Handler) ListReaders(c *gin.Context) {
	filter := model.ReaderFilter{
		Search:   c.Query("search"),
		Category: model.Category(c.Query("category")),
		Page:     utils.QueryInt(c, "page", utils.DefaultPage),
		Limit:    utils.QueryInt(c, "limit", utils.DefaultLimit),
	}
	if filter.Category != "" && !filter.Category.IsValid() {
		response.BadRequest(c, "Invalid category")
		return
	}
	if inactive := utils.QueryBool(c, "include_inactive"); inactive != nil {
		filter.IncludeInactive = *inactive
	}
	filter.Normalize()

	readers, total, err := h.service.ListReaders(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, model.NewReaderResponses(readers), &response.Meta{
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: utils.TotalPages(total, filter.Limit),
	})
}

// GetReader - GET /api/v1/readers/:id
func (h *Handler) GetReader(c *gin.Context) {
	id, ok := parseReaderID(c)
	if !ok {
		return
	}

	reader, err := h.service.GetReader(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.NewReaderResponse(reader))
}

// UpdateReader - PATCH /api/v1/readers/:id
func (h *Handler) UpdateReader(c *gin.Context) {
	id, ok := parseReaderID(c)
	if !ok {
		return
	}

	var req model.UpdateReaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	reader, err := h.service.UpdateReader(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.NewReaderResponse(reader))
}

// DeleteReader - DELETE /api/v1/readers/:id (soft delete)
func (h *Handler) DeleteReader(c *gin.Context) {
	id, ok := parseReaderID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteReader(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
