package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"pos/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test_secret"

func signToken(t *testing.T, secret string, userID int64, role string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func runProtected(token string, guards ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
	for i := len(guards) - 1; i >= 0; i-- {
		h = guards[i](h)
	}
	_ = h(c)
	return rec, c
}

func TestAuthJWT(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}

	t.Run("正しいトークンでuser_idとroleがcontextに載る", func(t *testing.T) {
		token := signToken(t, testSecret, 42, "CASHIER", time.Hour)
		rec, c := runProtected(token, AuthJWT(cfg))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(42), c.Get(CtxUserIDKey))
		assert.Equal(t, "CASHIER", c.Get(CtxUserRoleKey))
	})

	t.Run("ヘッダなしは401", func(t *testing.T) {
		rec, _ := runProtected("", AuthJWT(cfg))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("別のシークレットで署名されたトークンは401", func(t *testing.T) {
		token := signToken(t, "other_secret", 42, "CASHIER", time.Hour)
		rec, _ := runProtected(token, AuthJWT(cfg))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("期限切れトークンは401", func(t *testing.T) {
		token := signToken(t, testSecret, 42, "CASHIER", -time.Minute)
		rec, _ := runProtected(token, AuthJWT(cfg))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Bearer以外の形式は401", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = AuthJWT(cfg)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminRoleGuard(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}

	t.Run("ADMINは通る", func(t *testing.T) {
		token := signToken(t, testSecret, 1, "ADMIN", time.Hour)
		rec, _ := runProtected(token, AuthJWT(cfg), AdminRoleGuard())
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("CASHIERは403", func(t *testing.T) {
		token := signToken(t, testSecret, 1, "CASHIER", time.Hour)
		rec, _ := runProtected(token, AuthJWT(cfg), AdminRoleGuard())
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
