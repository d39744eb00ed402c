package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"promptvault-backend/internal/api/v1/auth"
	"promptvault-backend/internal/api/v1/user"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{})
	if err := db.AutoMigrate(&models.User{}); err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
}

func setupTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api/v1")
	auth.RegisterRoutes(group)
	return r
}

func postJSON(r *gin.Engine, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	os.Setenv("JWT_SECRET", "test_secret")
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	r := setupRouter()

	// Register.
	w := postJSON(r, "/api/v1/auth/register", gin.H{
		"username": "alice",
		"password": "long enough password",
	}, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	var registerResp struct {
		Data user.UserResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &registerResp))
	assert.Equal(t, "alice", registerResp.Data.Username)
	assert.Equal(t, "admin", registerResp.Data.Role) // first user
	assert.NotEmpty(t, registerResp.Data.Token)

	// Duplicate username.
	w = postJSON(r, "/api/v1/auth/register", gin.H{
		"username": "alice",
		"password": "long enough password",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Weak password rejected by validation.
	w = postJSON(r, "/api/v1/auth/register", gin.H{
		"username": "bob",
		"password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Login.
	w = postJSON(r, "/api/v1/auth/login", gin.H{
		"username": "alice",
		"password": "long enough password",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var loginResp struct {
		Data user.UserResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	token := loginResp.Data.Token
	assert.NotEmpty(t, token)

	// Wrong password.
	w = postJSON(r, "/api/v1/auth/login", gin.H{
		"username": "alice",
		"password": "not the password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Logout denylists the token.
	w = postJSON(r, "/api/v1/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	// The revoked token no longer authenticates.
	w = postJSON(r, "/api/v1/auth/logout", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
