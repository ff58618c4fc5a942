package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeySetValid(t *testing.T) {
	ks := NewKeySet([]string{"pk_test_abc", "pk_test_def"})
	assert.True(t, ks.Valid("pk_test_abc"))
	assert.False(t, ks.Valid("pk_test_ghost"))
}

func newAuthApp(keys *KeySet) *fiber.App {
	app := fiber.New()
	app.Use(RequireAPIKey(keys))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	return app
}

func TestRequireAPIKeyRejectsMissingHeader(t *testing.T) {
	app := newAuthApp(NewKeySet([]string{"pk_test_abc"}))
	req := httptest.NewRequest("GET", "/ping", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAPIKeyRejectsUnknownKey(t *testing.T) {
	app := newAuthApp(NewKeySet([]string{"pk_test_abc"}))
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Authorization", "Bearer pk_test_ghost")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAPIKeyAcceptsKnownKey(t *testing.T) {
	app := newAuthApp(NewKeySet([]string{"pk_test_abc"}))
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Authorization", "Bearer pk_test_abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
