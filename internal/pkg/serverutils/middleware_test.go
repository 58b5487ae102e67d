package serverutils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marknotes-be/pkg/search"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	errors int
}

func (l *testLogger) Debug(module, message string, details map[string]interface{}) {}
func (l *testLogger) Info(module, message string, details map[string]interface{})  {}
func (l *testLogger) Warn(module, message string, details map[string]interface{})  {}
func (l *testLogger) Error(module, message string, details map[string]interface{}) { l.errors++ }
func (l *testLogger) Sync() error                                                  { return nil }

func TestErrorHandlerMiddleware(t *testing.T) {
	log := &testLogger{}
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(log))
	app.Get("/fiber", func(ctx *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Note not found")
	})
	app.Get("/age", func(ctx *fiber.Ctx) error {
		_, err := search.ParseAgeSelector("yesterday")
		return err
	})
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		return errors.New("db exploded")
	})

	t.Run("fiber errors keep their status", func(t *testing.T) {
		res, err := app.Test(httptest.NewRequest(http.MethodGet, "/fiber", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("invalid age selector is a client error", func(t *testing.T) {
		res, err := app.Test(httptest.NewRequest(http.MethodGet, "/age", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("unknown errors become logged 500s", func(t *testing.T) {
		before := log.errors
		res, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
		assert.Equal(t, before+1, log.errors)
	})
}

func TestJwtMiddleware(t *testing.T) {
	const secret = "test-secret"

	app := fiber.New()
	app.Use(JwtMiddleware(secret))
	app.Get("/me", func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals("user_id").(string))
	})

	signToken := func(t *testing.T, secret string, claims jwt.MapClaims) string {
		t.Helper()
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return signed
	}

	t.Run("valid token passes user id through", func(t *testing.T) {
		token := signToken(t, secret, jwt.MapClaims{
			"user_id": "d5b0c9dc-6bc7-4a4a-a04d-4f2f63a1a38f",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		res, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("wrong signing key is rejected", func(t *testing.T) {
		token := signToken(t, "other-secret", jwt.MapClaims{
			"user_id": "d5b0c9dc-6bc7-4a4a-a04d-4f2f63a1a38f",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token := signToken(t, secret, jwt.MapClaims{
			"user_id": "d5b0c9dc-6bc7-4a4a-a04d-4f2f63a1a38f",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("token without user id is rejected", func(t *testing.T) {
		token := signToken(t, secret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}
