package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bookrental-backend/internal/domains/staff/repository"
	"bookrental-backend/internal/domains/staff/service"
	"bookrental-backend/pkg/jwt"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewService(repository.NewMemoryRepository(), jwt.NewManager("test-secret", time.Hour), bcrypt.MinCost)
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@library.test", "correct horse"))

	h := NewHandler(svc)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/staff", h.CreateStaff)
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	r := setupRouter(t)

	w := postJSON(r, "/auth/login", gin.H{"email": "admin@library.test", "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.AccessToken)
	assert.Equal(t, "Bearer", body.Data.TokenType)
	assert.NotContains(t, w.Body.String(), "password_hash")

	w = postJSON(r, "/auth/login", gin.H{"email": "admin@library.test", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateStaff(t *testing.T) {
	r := setupRouter(t)

	req := gin.H{"email": "desk@library.test", "password": "librarian1", "full_name": "Front Desk", "role": "librarian"}
	assert.Equal(t, http.StatusCreated, postJSON(r, "/staff", req).Code)
	assert.Equal(t, http.StatusConflict, postJSON(r, "/staff", req).Code)

	req["email"] = "short@library.test"
	req["password"] = "short"
	assert.Equal(t, http.StatusBadRequest, postJSON(r, "/staff", req).Code)
}
