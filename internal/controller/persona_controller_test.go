package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"contract-redline-be/internal/pkg/serverutils"
	"contract-redline-be/internal/repository/memory"
	"contract-redline-be/internal/service"
	"contract-redline-be/pkg/playbook"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPersonaTestApp(t *testing.T, secret string) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	svc := service.NewPersonaService(memory.NewPersonaRepositoryWithDefaults(playbook.DefaultPersonas()))
	NewPersonaController(svc, serverutils.NewJwtMiddleware(secret)).RegisterRoutes(app.Group("/api"))
	return app
}

func postJSONAuthed(t *testing.T, app *fiber.App, path, token string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func signToken(t *testing.T, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin"}).
		SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestPersonaListIsPublic(t *testing.T) {
	app := newPersonaTestApp(t, "testsecret")

	req, err := http.NewRequest(http.MethodGet, "/api/personas/v1", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPersonaMutationsRequireToken(t *testing.T) {
	app := newPersonaTestApp(t, "testsecret")

	// No Authorization header.
	resp := postJSON(t, app, "/api/personas/v1", map[string]string{
		"name":         "Aggressive",
		"instructions": "Push back on every clause.",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Token signed with the wrong secret.
	resp = postJSONAuthed(t, app, "/api/personas/v1", signToken(t, "wrongsecret"), map[string]string{
		"name":         "Aggressive",
		"instructions": "Push back on every clause.",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestPersonaUpsertWithValidToken(t *testing.T) {
	app := newPersonaTestApp(t, "testsecret")

	resp := postJSONAuthed(t, app, "/api/personas/v1", signToken(t, "testsecret"), map[string]string{
		"name":         "Aggressive",
		"instructions": "Push back on every clause.",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
