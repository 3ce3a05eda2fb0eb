package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/config"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/repository/memory"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/services"
	sessionws "github.com/himanshu123g/fitlife-plus-sub001/internal/websocket"
	"github.com/himanshu123g/fitlife-plus-sub001/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routesSecret = "routes-secret"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	sessionStore := memory.NewSessionStore()
	trainerStore := memory.NewTrainerStore()
	hub := sessionws.NewHub(nil)

	deps := Dependencies{
		Sessions: services.NewSessionService(
			sessionStore,
			trainerStore,
			services.NewMembershipPolicy([]string{"premium"}),
			nil,
			hub,
			nil,
		),
		Trainers: services.NewTrainerService(trainerStore, nil, nil),
		Hub:      hub,
	}

	app := fiber.New()
	cfg := &config.Config{JWTSecret: routesSecret, AppEnv: "test"}
	require.NoError(t, RegisterRoutes(app, cfg, deps))
	return app
}

func token(t *testing.T, userID, role, plan string) string {
	t.Helper()
	signed, err := utils.GenerateToken(userID, role, plan, routesSecret)
	require.NoError(t, err)
	return signed
}

func call(t *testing.T, app *fiber.App, method, path, bearer, body string) (int, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]json.RawMessage{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func decodeSession(t *testing.T, body map[string]json.RawMessage) models.SessionDetail {
	t.Helper()
	var session models.SessionDetail
	require.NoError(t, json.Unmarshal(body["session"], &session))
	return session
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	admin := token(t, "1", "admin", "")
	trainer := token(t, "7", "trainer", "")
	member := token(t, "42", "user", "premium")
	freeUser := token(t, "43", "user", "basic")

	status, _ := call(t, app, http.MethodPost, "/api/v1/admin/trainers", admin, `{"id":7,"full_name":"Tina Trainer"}`)
	require.Equal(t, http.StatusCreated, status)

	status, _ = call(t, app, http.MethodPut, "/api/v1/trainers/me/availability", trainer,
		`{"availability":[{"day":"Sunday","time":"10:00"}]}`)
	require.Equal(t, http.StatusOK, status)

	booking := `{"trainer_id":7,"scheduled_date":"2025-06-01","scheduled_time":"10:00"}`

	status, _ = call(t, app, http.MethodPost, "/api/v1/sessions", freeUser, booking)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := call(t, app, http.MethodPost, "/api/v1/sessions", member, booking)
	require.Equal(t, http.StatusCreated, status)
	created := decodeSession(t, body)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Empty(t, created.RoomID)

	status, _ = call(t, app, http.MethodGet, "/api/v1/trainers/7/slots/check?date=2025-06-01&time=10:00", member, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodPost, "/api/v1/sessions", member, booking)
	assert.Equal(t, http.StatusConflict, status)

	path := "/api/v1/sessions/" + jsonNumber(created.ID) + "/status"

	status, body = call(t, app, http.MethodPut, path, trainer, `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, status)
	approved := decodeSession(t, body)
	assert.NotEmpty(t, approved.RoomID)

	status, body = call(t, app, http.MethodPut, path, trainer, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, approved.RoomID, decodeSession(t, body).RoomID)

	status, body = call(t, app, http.MethodPut, path, member, `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(body["error"]), "cannot cancel completed session")

	status, body = call(t, app, http.MethodGet, "/api/v1/sessions/history", trainer, "")
	require.Equal(t, http.StatusOK, status)
	var history []models.SessionDetail
	require.NoError(t, json.Unmarshal(body["sessions"], &history))
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusCompleted, history[0].Status)
}

func TestRoleGatesOverHTTP(t *testing.T) {
	app := newTestApp(t)
	trainer := token(t, "7", "trainer", "")
	member := token(t, "42", "user", "premium")

	status, _ := call(t, app, http.MethodGet, "/api/v1/admin/sessions", trainer, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodPost, "/api/v1/sessions", trainer,
		`{"trainer_id":8,"scheduled_date":"2025-06-01","scheduled_time":"10:00"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodPut, "/api/v1/trainers/me/availability", member, `{"availability":[]}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodGet, "/api/v1/sessions/mine", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func jsonNumber(id int64) string {
	encoded, _ := json.Marshal(id)
	return string(encoded)
}
