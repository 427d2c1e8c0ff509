package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrental-backend/internal/domains/book/repository"
	"bookrental-backend/internal/domains/book/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(service.NewService(repository.NewMemoryRepository(), nil, 0))

	r := gin.New()
	books := r.Group("/books")
	books.POST("", h.CreateBook)
	books.GET("", h.ListBooks)
	books.GET("/:id", h.GetBook)
	books.PATCH("/:id", h.UpdateBook)
	books.DELETE("/:id", h.DeleteBook)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestBookHandler_CreateGetList(t *testing.T) {
	r := setupRouter()

	w, env := do(t, r, http.MethodPost, "/books", map[string]interface{}{
		"title":                "Dune",
		"author":               "Frank Herbert",
		"genre":                "sci-fi",
		"deposit_amount":       20,
		"rental_price_per_day": 2.5,
		"total_copies":         3,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID                uuid.UUID `json:"id"`
		RentalPricePerDay float64   `json:"rental_price_per_day"`
		AvailableCopies   int       `json:"available_copies"`
		IsAvailable       bool      `json:"is_available"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 2.5, created.RentalPricePerDay)
	assert.Equal(t, 3, created.AvailableCopies)
	assert.True(t, created.IsAvailable)

	w, _ = do(t, r, http.MethodGet, "/books/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodGet, "/books?genre=SCI-FI&available=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Total)
}

func TestBookHandler_ValidationFailure(t *testing.T) {
	r := setupRouter()

	w, env := do(t, r, http.MethodPost, "/books", map[string]interface{}{
		"title":        "",
		"author":       "x",
		"genre":        "y",
		"total_copies": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Details, "title")
	assert.Contains(t, env.Error.Details, "total_copies")
}

func TestBookHandler_NotFoundAndBadID(t *testing.T) {
	r := setupRouter()

	w, env := do(t, r, http.MethodGet, "/books/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "BOOK_NOT_FOUND", env.Error.Code)

	w, _ = do(t, r, http.MethodGet, "/books/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookHandler_UpdateAndSoftDelete(t *testing.T) {
	r := setupRouter()

	_, env := do(t, r, http.MethodPost, "/books", map[string]interface{}{
		"title": "Emma", "author": "Austen", "genre": "classic", "total_copies": 2,
	})
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, _ := do(t, r, http.MethodPatch, "/books/"+created.ID.String(), map[string]interface{}{"title": "Emma (annotated)"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodDelete, "/books/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env = do(t, r, http.MethodGet, "/books", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Meta.Total)
}
