package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookrental-backend/internal/domains/book/model"
	"bookrental-backend/internal/domains/book/service"
	"bookrental-backend/internal/shared/response"
	"bookrental-backend/internal/shared/utils"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

func parseBookID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid book ID")
		return uuid.Nil, false
	}
	return id, true
}

// CreateBook - POST /api/v1/books (admin)
func (h *Handler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("[BookHandler] invalid create payload")
		response.BadRequest(c, "Invalid request body")
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, model.NewBookResponse(book))
}

// ListBooks - GET /api/v1/books
// Query params: search, genre, author, available, include_inactive, page, limit
func (h *Handler) ListBooks(c *gin.Context) {
	filter := model.BookFilter{
		Search:    c.Query("search"),
		Genre:     c.Query("genre"),
		Author:    c.Query("author"),
		Available: utils.QueryBool(c, "available"),
		Page:      utils.QueryInt(c, "page", utils.DefaultPage),
		Limit:     utils.QueryInt(c, "limit", utils.DefaultLimit),
	}
	if inactive := utils.QueryBool(c, "include_inactive"); inactive != nil {
		filter.IncludeInactive = *inactive
	}
	filter.Normalize()

	books, total, err := h.service.ListBooks(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, model.NewBookResponses(books), &response.Meta{
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: utils.TotalPages(total, filter.Limit),
	})
}

// GetBook - GET /api/v1/books/:id
func (h *Handler) GetBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.NewBookResponse(book))
}

// UpdateBook - PATCH /api/v1/books/:id (admin)
func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.NewBookResponse(book))
}

// DeleteBook - DELETE /api/v1/books/:id (admin, soft delete)
func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
