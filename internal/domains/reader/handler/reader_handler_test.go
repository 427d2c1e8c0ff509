package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrental-backend/internal/domains/reader/repository"
	"bookrental-backend/internal/domains/reader/service"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(service.NewService(repository.NewMemoryRepository()))

	r := gin.New()
	r.POST("/readers", h.CreateReader)
	r.GET("/readers", h.ListReaders)
	r.GET("/readers/:id", h.GetReader)
	r.PATCH("/readers/:id", h.UpdateReader)
	r.DELETE("/readers/:id", h.DeleteReader)
	return r
}

func send(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReaderHandler_CreateIgnoresDiscountInput(t *testing.T) {
	r := setupRouter()

	w := send(r, http.MethodPost, "/readers", map[string]interface{}{
		"first_name":          "Alan",
		"last_name":           "Turing",
		"phone":               "5557777",
		"category":            "student",
		"discount_percentage": 90,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data struct {
			ID                 string `json:"id"`
			DiscountPercentage int    `json:"discount_percentage"`
			FullName           string `json:"full_name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 15, body.Data.DiscountPercentage)
	assert.Equal(t, "Alan Turing", body.Data.FullName)

	w = send(r, http.MethodGet, "/readers/"+body.Data.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReaderHandler_DuplicatePhoneIsConflict(t *testing.T) {
	r := setupRouter()
	payload := map[string]interface{}{"first_name": "A", "last_name": "B", "phone": "5551111"}

	require.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/readers", payload).Code)
	w := send(r, http.MethodPost, "/readers", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PHONE_ALREADY_EXISTS")
}

func TestReaderHandler_ListRejectsUnknownCategory(t *testing.T) {
	r := setupRouter()

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodGet, "/readers?category=vip", nil).Code)
	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, "/readers?category=senior", nil).Code)
}

func TestReaderHandler_InvalidPayload(t *testing.T) {
	r := setupRouter()

	w := send(r, http.MethodPost, "/readers", map[string]interface{}{"first_name": "A", "phone": "x", "category": "vip"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPatch, "/readers/not-a-uuid", map[string]string{}).Code)
}
