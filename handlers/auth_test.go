package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/handlers"
	"simplog/models"
	"simplog/store"
	"simplog/store/memory"
)

func setupAuthTest(t *testing.T) store.Stores {
	t.Helper()
	gin.SetMode(gin.TestMode)
	stores := memory.New().Stores()
	handlers.Init(handlers.Deps{Stores: stores})
	return stores
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return w
}

func seedCode(t *testing.T, s store.Stores, email, value string) {
	t.Helper()
	require.NoError(t, s.VerifyCodes.Insert(context.Background(), &models.VerifyCode{
		Value:     value,
		Email:     email,
		Operation: models.CodeTypeRegister,
		CreatedAt: time.Now(),
	}))
}

func TestRegisterCreatesUser(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	stores := setupAuthTest(t)
	seedCode(t, stores, "alice@example.com", "abc123")

	w := postJSON(t, handlers.Register,
		`{"username":"alice","password":"pw","confirmPassword":"pw","email":"alice@example.com","code":"abc123"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")

	u, err := stores.Users.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "pw", u.Password)
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	stores := setupAuthTest(t)
	require.NoError(t, stores.Users.Insert(context.Background(), &models.User{
		ID: primitive.NewObjectID(), Username: "alice", Email: "old@example.com",
	}))
	seedCode(t, stores, "new@example.com", "abc123")

	w := postJSON(t, handlers.Register,
		`{"username":"alice","password":"pw","confirmPassword":"pw","email":"new@example.com","code":"abc123"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Username already taken")
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	stores := setupAuthTest(t)
	require.NoError(t, stores.Users.Insert(context.Background(), &models.User{
		ID: primitive.NewObjectID(), Username: "alice", Email: "alice@example.com",
	}))
	seedCode(t, stores, "alice@example.com", "abc123")

	w := postJSON(t, handlers.Register,
		`{"username":"bob","password":"pw","confirmPassword":"pw","email":"alice@example.com","code":"abc123"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")
}

func TestRegisterRejectsWrongCode(t *testing.T) {
	stores := setupAuthTest(t)
	seedCode(t, stores, "alice@example.com", "abc123")

	w := postJSON(t, handlers.Register,
		`{"username":"alice","password":"pw","confirmPassword":"pw","email":"alice@example.com","code":"zzz999"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Verification code")
}
