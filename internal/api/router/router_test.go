package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/handler"
	"github.com/cuongbtq/jobboard-be/internal/api/router"
	"github.com/cuongbtq/jobboard-be/internal/api/service"
	"github.com/cuongbtq/jobboard-be/internal/api/storage/storagetest"
	"github.com/cuongbtq/jobboard-be/internal/auth"
	"github.com/cuongbtq/jobboard-be/internal/realtime"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	engine   *gin.Engine
	services *service.Services
	shutdown context.CancelFunc
}

func newTestAPI(t *testing.T, opts router.Options) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewJWTManager("test-secret", time.Hour, "jobboard-test")
	hub := realtime.NewHub()

	services := service.New(service.Dependencies{
		Logger:  logger,
		Storage: storagetest.NewStorage(t),
		Live:    hub,
	}, tokens)
	t.Cleanup(services.Notifications.Wait)

	lifetime, shutdown := context.WithCancel(context.Background())
	t.Cleanup(shutdown)

	opts.Tokens = tokens
	engine := router.SetupRouter(&handler.Dependencies{
		Logger:   logger,
		Services: services,
		Hub:      hub,
		Upgrader: router.NewUpgrader(nil),
		Lifetime: lifetime,
	}, opts)

	return &testAPI{engine: engine, services: services, shutdown: shutdown}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	code, raw := a.doRaw(t, method, path, token, body)

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return code, out
}

func (a *testAPI) doList(t *testing.T, method, path, token string) (int, []map[string]any) {
	t.Helper()
	code, raw := a.doRaw(t, method, path, token, nil)

	var out []map[string]any
	if code == http.StatusOK {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return code, out
}

func (a *testAPI) doRaw(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

type account struct {
	id    int64
	token string
}

func (a *testAPI) register(t *testing.T, username, role string) account {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "correct-horse",
		"password_confirm": "correct-horse",
		"role":             role,
		"full_name":        strings.ToUpper(username[:1]) + username[1:],
	})
	require.Equal(t, http.StatusCreated, code, body)

	user := body["user"].(map[string]any)
	return account{id: int64(user["id"].(float64)), token: body["access"].(string)}
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t, router.Options{})

	code, body := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	api := newTestAPI(t, router.Options{})

	for _, path := range []string{"/api/v1/conversations", "/api/v1/notifications", "/api/v1/applications", "/api/v1/auth/me"} {
		code, _ := api.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)

		code, _ = api.do(t, http.MethodGet, path, "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
	}
}

func TestRouter_Login(t *testing.T) {
	api := newTestAPI(t, router.Options{})
	registered := api.register(t, "sam", "job_seeker")

	code, body := api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "sam", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, body["access"])

	code, me := api.do(t, http.MethodGet, "/api/v1/auth/me", body["access"].(string), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(registered.id), me["id"])
	assert.Equal(t, "job_seeker", me["role"])

	code, body = api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "sam", "password": "wrong-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password.", body["error"])
}

func TestRouter_ApplicationLifecycle(t *testing.T) {
	api := newTestAPI(t, router.Options{})
	employer := api.register(t, "acme", "employer")
	rival := api.register(t, "globex", "employer")
	seeker := api.register(t, "sam", "job_seeker")

	code, job := api.do(t, http.MethodPost, "/api/v1/jobs", employer.token, map[string]any{
		"title": "Backend Engineer", "job_type": "full_time",
	})
	require.Equal(t, http.StatusCreated, code, job)
	jobID := job["id"].(float64)

	code, _ = api.do(t, http.MethodPost, "/api/v1/jobs", seeker.token, map[string]any{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, code)

	code, app := api.do(t, http.MethodPost, "/api/v1/applications", seeker.token, map[string]any{
		"job": jobID, "cover_letter": "Hire me",
	})
	require.Equal(t, http.StatusCreated, code, app)
	assert.Equal(t, "pending", app["status"])
	appPath := fmt.Sprintf("/api/v1/applications/%d", int64(app["id"].(float64)))

	t.Run("duplicate application is a 400 with a descriptive error", func(t *testing.T) {
		code, body := api.do(t, http.MethodPost, "/api/v1/applications", seeker.token, map[string]any{"job": jobID})
		require.Equal(t, http.StatusBadRequest, code)
		errs := body["errors"].(map[string]any)
		assert.Equal(t, []any{"You have already applied for this job."}, errs["non_field_errors"])
	})

	t.Run("employers cannot apply", func(t *testing.T) {
		code, _ := api.do(t, http.MethodPost, "/api/v1/applications", rival.token, map[string]any{"job": jobID})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("rival employer cannot see or update", func(t *testing.T) {
		code, _ := api.do(t, http.MethodGet, appPath, rival.token, nil)
		assert.Equal(t, http.StatusForbidden, code)

		code, body := api.do(t, http.MethodPatch, appPath, rival.token, map[string]string{"status": "accepted"})
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "You can only update applications for your own jobs.", body["error"])

		code, _ = api.doList(t, http.MethodGet, fmt.Sprintf("/api/v1/jobs/%d/applications", int64(jobID)), rival.token)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("owner moves the application forward", func(t *testing.T) {
		code, body := api.do(t, http.MethodPatch, appPath, employer.token, map[string]string{"status": "reviewed"})
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, "reviewed", body["status"])

		code, body = api.do(t, http.MethodPatch, appPath, employer.token, map[string]string{"status": "pending"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body["errors"], "status")
	})

	t.Run("applicant is notified once", func(t *testing.T) {
		api.services.Notifications.Wait()

		code, body := api.do(t, http.MethodGet, "/api/v1/notifications/unread-count", seeker.token, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, float64(1), body["count"])

		code, body = api.do(t, http.MethodGet, "/api/v1/notifications", seeker.token, nil)
		require.Equal(t, http.StatusOK, code)
		items := body["notifications"].([]any)
		require.Len(t, items, 1)
		first := items[0].(map[string]any)
		assert.Contains(t, first["message"], "Backend Engineer")
		assert.Contains(t, first["message"], "reviewed")
		assert.NotEmpty(t, first["created_at_formatted"])

		notificationPath := fmt.Sprintf("/api/v1/notifications/%d/read", int64(first["id"].(float64)))
		code, _ = api.do(t, http.MethodPost, notificationPath, employer.token, nil)
		assert.Equal(t, http.StatusNotFound, code)

		code, body = api.do(t, http.MethodPost, notificationPath, seeker.token, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["is_read"])
	})

	t.Run("listings", func(t *testing.T) {
		code, apps := api.doList(t, http.MethodGet, "/api/v1/applications", seeker.token)
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, apps, 1)

		code, apps = api.doList(t, http.MethodGet, fmt.Sprintf("/api/v1/jobs/%d/applications", int64(jobID)), employer.token)
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, apps, 1)

		code, body := api.do(t, http.MethodGet, "/api/v1/employer/jobs", employer.token, nil)
		require.Equal(t, http.StatusOK, code)
		jobs := body["jobs"].([]any)
		require.Len(t, jobs, 1)
		assert.Equal(t, float64(1), jobs[0].(map[string]any)["application_count"])
	})
}

func TestRouter_Messaging(t *testing.T) {
	api := newTestAPI(t, router.Options{})
	alice := api.register(t, "alice", "job_seeker")
	bob := api.register(t, "bob", "employer")

	code, msg := api.do(t, http.MethodPost, "/api/v1/messages", alice.token, map[string]any{
		"recipient": bob.id, "content": "Hello Bob",
	})
	require.Equal(t, http.StatusCreated, code, msg)

	code, body := api.do(t, http.MethodPost, "/api/v1/messages", alice.token, map[string]any{
		"recipient": alice.id, "content": "Note to self",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["errors"], "recipient")

	code, conversations := api.doList(t, http.MethodGet, "/api/v1/conversations", bob.token)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, conversations, 1)
	assert.Equal(t, float64(alice.id), conversations[0]["user"].(map[string]any)["id"])
	assert.Equal(t, float64(1), conversations[0]["unread_count"])
	assert.Equal(t, false, conversations[0]["last_message"].(map[string]any)["is_sender"])

	code, conversations = api.doList(t, http.MethodGet, "/api/v1/conversations", alice.token)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, conversations, 1)
	assert.Equal(t, true, conversations[0]["last_message"].(map[string]any)["is_sender"])

	code, thread := api.doList(t, http.MethodGet, fmt.Sprintf("/api/v1/messages/%d?mark_read=false", alice.id), bob.token)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, thread, 1)
	assert.Equal(t, false, thread[0]["is_read"])

	code, body = api.do(t, http.MethodGet, "/api/v1/messages/unread-count", bob.token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["count"])

	code, thread = api.doList(t, http.MethodGet, fmt.Sprintf("/api/v1/messages/%d", alice.id), bob.token)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, thread, 1)
	assert.Equal(t, true, thread[0]["is_read"])

	code, body = api.do(t, http.MethodGet, "/api/v1/messages/unread-count", bob.token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["count"])

	code, _ = api.doList(t, http.MethodGet, "/api/v1/messages/9999", bob.token)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.doList(t, http.MethodGet, "/api/v1/messages/abc", bob.token)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_AuthRateLimit(t *testing.T) {
	limiter := router.NewLimiterStore(1, 2, time.Minute)
	t.Cleanup(limiter.Stop)

	api := newTestAPI(t, router.Options{AuthLimiter: limiter})
	credentials := map[string]string{"username": "nobody", "password": "whatever-pass"}

	for range 2 {
		code, _ := api.do(t, http.MethodPost, "/api/v1/auth/login", "", credentials)
		assert.Equal(t, http.StatusUnauthorized, code)
	}

	code, _ := api.do(t, http.MethodPost, "/api/v1/auth/login", "", credentials)
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestRouter_NotificationSocket(t *testing.T) {
	api := newTestAPI(t, router.Options{})
	alice := api.register(t, "alice", "job_seeker")
	bob := api.register(t, "bob", "employer")

	server := httptest.NewServer(api.engine)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws/notifications?token=" + bob.token
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frame map[string]any
	require.NoError(t, ws.ReadJSON(&frame))
	assert.Equal(t, "connected", frame["type"])

	code, _ := api.do(t, http.MethodPost, "/api/v1/messages", alice.token, map[string]any{
		"recipient": bob.id, "content": "Are you hiring?",
	})
	require.Equal(t, http.StatusCreated, code)

	frame = map[string]any{}
	require.NoError(t, ws.ReadJSON(&frame))
	assert.Equal(t, "notification", frame["type"])
	notification := frame["notification"].(map[string]any)
	assert.Equal(t, "New message from Alice", notification["message"])
}

func TestRouter_NotificationSocketClosesOnShutdown(t *testing.T) {
	api := newTestAPI(t, router.Options{})
	bob := api.register(t, "bob", "employer")

	server := httptest.NewServer(api.engine)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws/notifications?token=" + bob.token
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frame map[string]any
	require.NoError(t, ws.ReadJSON(&frame))
	assert.Equal(t, "connected", frame["type"])

	api.shutdown()

	_, _, err = ws.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestRouter_NotificationSocketRejectsMissingToken(t *testing.T) {
	api := newTestAPI(t, router.Options{})

	server := httptest.NewServer(api.engine)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws/notifications"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
