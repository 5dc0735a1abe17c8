package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ship-framework-be/internal/bootstrap"
	"ship-framework-be/internal/config"
	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stepText = "Los restaurantes pequeños pierden clientes porque no gestionan bien sus reservas."

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "test",
			LogFilePath:        filepath.Join(dir, "app.log"),
			WebsocketLogPath:   filepath.Join(dir, "websocket.log"),
			CorsAllowedOrigins: "*",
			AutoSaveInterval:   time.Minute,
		},
		Ai: config.AIConfig{
			LLMProvider: "fake",
			Voice:       "Kore",
			SpeechCache: 8,
		},
		Storage: config.StorageConfig{Driver: "memory"},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
		},
	}
}

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newClient(t *testing.T) *client {
	t.Helper()
	container, err := bootstrap.NewContainer(nil, testConfig(t))
	require.NoError(t, err)
	t.Cleanup(container.Close)

	c := &client{t: t, app: New(testConfig(t), container).GetApp()}

	var created serverutils.Response[dto.CreateWorkspaceResponse]
	status := c.do(http.MethodPost, "/api/workspace/v1", nil, &created)
	require.Equal(t, fiber.StatusCreated, status)
	require.NotEmpty(t, created.Data.Token)
	c.token = created.Data.Token
	return c
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(blob)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *client) fillSession() {
	c.t.Helper()
	status := c.do(http.MethodPut, "/api/session/v1/project", map[string]any{
		"projectName":   "Reservas fáciles",
		"clientProfile": map[string]string{"name": "Ana", "company": "Cocina SA"},
	}, nil)
	require.Equal(c.t, fiber.StatusOK, status)
	for i := 0; i < 4; i++ {
		status := c.do(http.MethodPut, fmt.Sprintf("/api/session/v1/steps/%d/input", i), map[string]string{"text": stepText}, nil)
		require.Equal(c.t, fiber.StatusOK, status)
	}
}

func TestHealth(t *testing.T) {
	c := newClient(t)
	var body serverutils.Response[map[string]string]
	assert.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/health/v1", nil, &body))
	assert.True(t, body.Success)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	c := newClient(t)
	c.token = ""
	var body serverutils.ErrorResponseBody
	assert.Equal(t, fiber.StatusUnauthorized, c.do(http.MethodGet, "/api/session/v1", nil, &body))
	assert.False(t, body.Success)

	c.token = "not-a-token"
	assert.Equal(t, fiber.StatusUnauthorized, c.do(http.MethodGet, "/api/archive/v1", nil, nil))
}

func TestWorkspaceStatus(t *testing.T) {
	c := newClient(t)
	var body serverutils.Response[dto.WorkspaceStatusResponse]
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/workspace/v1/status", nil, &body))
	assert.True(t, body.Data.CredentialOK)
	assert.Equal(t, "1m0s", body.Data.AutoSaveInterval)
}

func TestSessionEditing(t *testing.T) {
	c := newClient(t)

	var session serverutils.Response[dto.SessionResponse]
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/session/v1", nil, &session))
	assert.Len(t, session.Data.Document.Steps, 4)
	assert.False(t, session.Data.Saveable)

	require.Equal(t, fiber.StatusOK, c.do(http.MethodPost, "/api/session/v1/steps/1/dictate", map[string]string{"text": "hola"}, &session))
	assert.Equal(t, "hola", session.Data.Document.Steps[1].DraftInput)

	assert.Equal(t, fiber.StatusBadRequest, c.do(http.MethodPut, "/api/session/v1/steps/x/input", map[string]string{"text": "a"}, nil))
	assert.Equal(t, fiber.StatusNotFound, c.do(http.MethodPut, "/api/session/v1/steps/9/input", map[string]string{"text": "a"}, nil))
	assert.Equal(t, fiber.StatusNotFound, c.do(http.MethodPost, "/api/session/v1/steps/0/restore", map[string]int{"historyIndex": 0}, nil))
}

func TestSaveRejectsIncompleteSession(t *testing.T) {
	c := newClient(t)
	var body serverutils.ErrorResponseBody
	require.Equal(t, fiber.StatusUnprocessableEntity, c.do(http.MethodPost, "/api/session/v1/save", nil, &body))
	assert.NotEmpty(t, body.Errors)
}

func TestSaveAndManageArchive(t *testing.T) {
	c := newClient(t)
	c.fillSession()

	var saved serverutils.Response[dto.SaveProjectResponse]
	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/session/v1/save", nil, &saved))
	id := saved.Data.Project.ID
	assert.True(t, saved.Data.Session.Saved)
	assert.Empty(t, saved.Data.Session.Document.ProjectName)

	var list serverutils.Response[[]dto.ArchivedProjectSummary]
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/archive/v1", nil, &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Reservas fáciles", list.Data[0].Name)

	require.Equal(t, fiber.StatusOK, c.do(http.MethodPut, "/api/archive/v1/"+id+"/status", map[string]string{"status": "success"}, nil))
	assert.Equal(t, fiber.StatusUnprocessableEntity, c.do(http.MethodPut, "/api/archive/v1/"+id+"/status", map[string]string{"status": "done"}, nil))

	var tmpl serverutils.Response[dto.TemplateSummary]
	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/archive/v1/"+id+"/template", nil, &tmpl))
	assert.Equal(t, "Plantilla de Reservas fáciles", tmpl.Data.Name)

	assert.Equal(t, fiber.StatusServiceUnavailable, c.do(http.MethodPost, "/api/archive/v1/backup", nil, nil))

	require.Equal(t, fiber.StatusOK, c.do(http.MethodDelete, "/api/archive/v1/"+id, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, c.do(http.MethodGet, "/api/archive/v1/"+id, nil, nil))
}

func TestExportImportRoundTrip(t *testing.T) {
	c := newClient(t)
	c.fillSession()
	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/session/v1/save", nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/archive/v1/export", nil)
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.app.Test(req, -1)
	require.NoError(t, err)
	blob, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "ship-export-")

	other := newClient(t)
	req = httptest.NewRequest(http.MethodPost, "/api/archive/v1/import", bytes.NewReader(blob))
	req.Header.Set("Authorization", "Bearer "+other.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err = other.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list serverutils.Response[[]dto.ArchivedProjectSummary]
	require.Equal(t, fiber.StatusOK, other.do(http.MethodGet, "/api/archive/v1", nil, &list))
	assert.Len(t, list.Data, 1)

	req = httptest.NewRequest(http.MethodPost, "/api/archive/v1/import", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+other.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err = other.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestTemplates(t *testing.T) {
	c := newClient(t)

	var list serverutils.Response[[]dto.TemplateSummary]
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/template/v1", nil, &list))
	require.NotEmpty(t, list.Data)

	var session serverutils.Response[dto.SessionResponse]
	require.Equal(t, fiber.StatusOK, c.do(http.MethodPost, "/api/session/v1/template/"+list.Data[0].ID, nil, &session))
	assert.NotEmpty(t, session.Data.Document.Steps[0].DraftInput)

	assert.Equal(t, fiber.StatusNotFound, c.do(http.MethodPost, "/api/session/v1/template/missing", nil, nil))
	assert.Equal(t, fiber.StatusNotFound, c.do(http.MethodDelete, "/api/template/v1/missing", nil, nil))
}

func TestSettings(t *testing.T) {
	c := newClient(t)

	var body serverutils.Response[map[string]any]
	require.Equal(t, fiber.StatusOK, c.do(http.MethodPut, "/api/settings/v1", map[string]any{"temperature": 0.2}, &body))
	assert.InDelta(t, 0.2, body.Data["temperature"], 0.0001)

	assert.Equal(t, fiber.StatusUnprocessableEntity, c.do(http.MethodPut, "/api/settings/v1", map[string]any{"temperature": 3}, nil))
	assert.Equal(t, fiber.StatusUnprocessableEntity, c.do(http.MethodPut, "/api/settings/v1", map[string]any{
		"deepReasoning": true,
		"webGrounding":  true,
	}, nil))
}

func TestVoiceCommand(t *testing.T) {
	c := newClient(t)

	var body serverutils.Response[dto.VoiceCommandResponse]
	require.Equal(t, fiber.StatusOK, c.do(http.MethodPost, "/api/voice/v1/command", map[string]string{
		"transcript": "siguiente paso",
		"view":       "new_project",
	}, &body))
	require.True(t, body.Data.Recognized)
	assert.Equal(t, 1, body.Data.Session.FocusedStep)

	require.Equal(t, fiber.StatusOK, c.do(http.MethodPost, "/api/voice/v1/command", map[string]string{
		"transcript": "ver base de datos",
		"view":       "welcome",
	}, &body))
	assert.Equal(t, "database", body.Data.View)

	assert.Equal(t, fiber.StatusUnprocessableEntity, c.do(http.MethodPost, "/api/voice/v1/command", map[string]string{
		"transcript": "hola",
		"view":       "kitchen",
	}, nil))

	assert.Equal(t, fiber.StatusNoContent, c.do(http.MethodDelete, "/api/voice/v1/speech", nil, nil))
}
