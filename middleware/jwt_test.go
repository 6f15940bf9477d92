package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/models"
	"github.com/HodeX7/KDJeevraksha/services"
)

func setupAuthTest(t *testing.T) (*gin.Engine, services.InterfaceJWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	cfg := &config.Config{JWTSecretKey: "test-secret"}
	InitAuthMiddleware(db, cfg)

	r := gin.New()
	r.GET("/protected", Authentication(), func(c *gin.Context) {
		claims, ok := ActorClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	r.GET("/vet-only", Authentication(), RequireRoles(models.RoleVet), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r, services.NewJWTService(db, cfg)
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticationMissingHeader(t *testing.T) {
	r, _ := setupAuthTest(t)
	w := doRequest(r, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationInvalidToken(t *testing.T) {
	r, _ := setupAuthTest(t)
	w := doRequest(r, "/protected", "not-a-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthenticationExpiredToken(t *testing.T) {
	r, _ := setupAuthTest(t)

	claims := &services.JWTClaims{
		UserID: 7,
		Name:   "Ramesh",
		Role:   models.RoleCatcher,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	w := doRequest(r, "/protected", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthenticationValidToken(t *testing.T) {
	r, jwtSvc := setupAuthTest(t)

	token, err := jwtSvc.GenerateToken(7, "Ramesh", models.RoleCatcher)
	require.NoError(t, err)

	w := doRequest(r, "/protected", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestRequireRolesForbidden(t *testing.T) {
	r, jwtSvc := setupAuthTest(t)

	token, err := jwtSvc.GenerateToken(7, "Sunita", models.RoleCaretaker)
	require.NoError(t, err)

	w := doRequest(r, "/vet-only", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	r, jwtSvc := setupAuthTest(t)

	token, err := jwtSvc.GenerateToken(7, "Dr. Joshi", models.RoleVet)
	require.NoError(t, err)

	w := doRequest(r, "/vet-only", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesAdminBypass(t *testing.T) {
	r, jwtSvc := setupAuthTest(t)

	token, err := jwtSvc.GenerateToken(1, "Admin", models.RoleAdmin)
	require.NoError(t, err)

	w := doRequest(r, "/vet-only", token)
	assert.Equal(t, http.StatusOK, w.Code)
}
