package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupTestConfig() {
	os.Setenv("JWT_SECRET", "test_secret")
}

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

func setupMockRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		user := c.MustGet("user").(models.User)
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	setupTestConfig()
	setupTestDB()
	mr := setupMockRedis()
	defer mr.Close()

	user := models.User{Username: "alice", Password: "hashed", Role: "user"}
	assert.NoError(t, database.DB.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID, user.Role)
	assert.NoError(t, err)

	r := authTestRouter()

	// Valid token passes and resolves the user.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	// Missing header.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Malformed header.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	setupTestConfig()
	setupTestDB()
	mr := setupMockRedis()
	defer mr.Close()

	r := authTestRouter()

	// Expired token.
	claims := jwt.MapClaims{
		"user_id": 1,
		"role":    "user",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test_secret"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token signed with the wrong key.
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong_secret"))

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token for a user that no longer exists.
	orphan, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 9999,
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test_secret"))

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+orphan)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareDenylistedToken(t *testing.T) {
	setupTestConfig()
	setupTestDB()
	mr := setupMockRedis()
	defer mr.Close()

	user := models.User{Username: "alice", Password: "hashed", Role: "user"}
	assert.NoError(t, database.DB.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID, user.Role)
	assert.NoError(t, err)
	assert.NoError(t, services.AddToDenylist(token, time.Hour))

	r := authTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}
