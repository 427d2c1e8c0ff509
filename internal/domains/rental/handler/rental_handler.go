package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookrental-backend/internal/domains/rental/model"
	"bookrental-backend/internal/domains/rental/service"
	"bookrental-backend/internal/shared/response"
	"bookrental-backend/internal/shared/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

func parseID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// filterFromQuery reads status, reader_id, book_id, page and limit
func filterFromQuery(c *gin.Context) (model.RentalFilter, bool) {
	filter := model.RentalFilter{
		Status: model.Status(c.Query("status")),
		Page:   utils.QueryInt(c, "page", utils.DefaultPage),
		Limit:  utils.QueryInt(c, "limit", utils.DefaultLimit),
	}

	readerID, ok := utils.QueryUUID(c, "reader_id")
	if !ok {
		response.BadRequest(c, "Invalid reader_id")
		return filter, false
	}
	bookID, ok := utils.QueryUUID(c, "book_id")
	if !ok {
		response.BadRequest(c, "Invalid book_id")
		return filter, false
	}
	filter.ReaderID = readerID
	filter.BookID = bookID
	return filter, true
}

func writePage(c *gin.Context, rentals []model.Rental, total int, filter model.RentalFilter) {
	filter.Normalize(time.Time{})
	response.SuccessWithMeta(c, http.StatusOK, rentals, &response.Meta{
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: utils.TotalPages(total, filter.Limit),
	})
}

// CreateRental - POST /api/v1/rentals
func (h *Handler) CreateRental(c *gin.Context) {
	var req model.CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("[RentalHandler] invalid create payload")
		response.BadRequest(c, "Invalid request body")
		return
	}

	rental, err := h.service.CreateRental(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, rental)
}

// ReturnRental - POST /api/v1/rentals/:id/return
// Body (optional): fine_amount, notes
func (h *Handler) ReturnRental(c *gin.Context) {
	id, ok := parseID(c, "rental")
	if !ok {
		return
	}

	// an empty body, chunked or not, decodes to io.EOF
	var req model.ReturnRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body")
		return
	}

	rental, err := h.service.ReturnRental(c.Request.Context(), id, req)
	if err != nil {
		if rental != nil && errors.Is(err, model.ErrInventoryIntegrity) {
			response.SuccessWithWarnings(c, http.StatusOK, rental, model.ErrInventoryIntegrity.Message)
			return
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rental)
}

// GetRental - GET /api/v1/rentals/:id
func (h *Handler) GetRental(c *gin.Context) {
	id, ok := parseID(c, "rental")
	if !ok {
		return
	}

	rental, err := h.service.GetRental(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rental)
}

// ListRentals - GET /api/v1/rentals
// Query params: status, reader_id, book_id, page, limit
func (h *Handler) ListRentals(c *gin.Context) {
	filter, ok := filterFromQuery(c)
	if !ok {
		return
	}

	rentals, total, err := h.service.ListRentals(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	writePage(c, rentals, total, filter)
}

// ListActive - GET /api/v1/rentals/active
func (h *Handler) ListActive(c *gin.Context) {
	filter, ok := filterFromQuery(c)
	if !ok {
		return
	}

	rentals, total, err := h.service.ListActive(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	writePage(c, rentals, total, filter)
}

// ListOverdue - GET /api/v1/rentals/overdue
func (h *Handler) ListOverdue(c *gin.Context) {
	filter, ok := filterFromQuery(c)
	if !ok {
		return
	}

	rentals, total, err := h.service.ListOverdue(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	writePage(c, rentals, total, filter)
}

// ListReaderRentals - GET /api/v1/readers/:id/rentals
func (h *Handler) ListReaderRentals(c *gin.Context) {
	readerID, ok := parseID(c, "reader")
	if !ok {
		return
	}
	filter, ok := filterFromQuery(c)
	if !ok {
		return
	}

	rentals, total, err := h.service.ListByReader(c.Request.Context(), readerID, filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	writePage(c, rentals, total, filter)
}

// Statistics - GET /api/v1/rentals/statistics
func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// ExportRentals - GET /api/v1/rentals/export
// Same filters as the list, returns an .xlsx attachment
func (h *Handler) ExportRentals(c *gin.Context) {
	filter, ok := filterFromQuery(c)
	if !ok {
		return
	}

	f, n, err := h.service.ExportRentals(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("[RentalHandler] close workbook")
		}
	}()

	filename := fmt.Sprintf("rentals_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("X-Total-Rows", fmt.Sprintf("%d", n))
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("[RentalHandler] failed to stream export")
	}
}
