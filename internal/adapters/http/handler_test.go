package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/lighthouse-deck/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	mu        sync.Mutex
	snapshot  *domain.Snapshot
	states    map[string]domain.CommandState
	lastErr   error
	pingErr   error
	refreshes int
	started   []string
	stopped   []string
}

func newFakeService() *fakeService {
	return &fakeService{
		snapshot: &domain.Snapshot{Containers: []domain.Container{}},
		states:   map[string]domain.CommandState{},
	}
}

func (f *fakeService) Refresh(ctx context.Context) error { return nil }
func (f *fakeService) Start(ctx context.Context, id string) error {
	f.DispatchStart(id)
	return nil
}
func (f *fakeService) Stop(ctx context.Context, id string) error {
	f.DispatchStop(id)
	return nil
}

func (f *fakeService) TriggerRefresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
}

func (f *fakeService) DispatchStart(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, id)
}

func (f *fakeService) DispatchStop(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, id)
}

func (f *fakeService) Snapshot() *domain.Snapshot { return f.snapshot }

func (f *fakeService) CommandState(id string) domain.CommandState { return f.states[id] }

func (f *fakeService) PendingCommand(id string) (domain.CommandKind, bool) { return "", false }

func (f *fakeService) LastRefreshError() error { return f.lastErr }

func (f *fakeService) Ping(ctx context.Context) error { return f.pingErr }

func doRequest(t *testing.T, app *fiber.App, method, path string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestListContainers(t *testing.T) {
	svc := newFakeService()
	svc.snapshot = &domain.Snapshot{
		Generation:  7,
		RefreshedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Containers: []domain.Container{
			{ID: "abc123def456789", ShortID: "abc123def456", Name: "web", Status: domain.StatusRunning},
			{ID: "zzz", ShortID: "zzz", Name: "db", Status: domain.StatusExited},
		},
	}
	svc.states["zzz"] = domain.CommandDispatching
	app := NewApp(svc)

	status, body := doRequest(t, app, fiber.MethodGet, "/api/v1/containers")
	require.Equal(t, fiber.StatusOK, status)

	var got struct {
		Generation uint64 `json:"generation"`
		Containers []struct {
			ID      string `json:"id"`
			ShortID string `json:"short_id"`
			Name    string `json:"name"`
			Status  string `json:"status"`
			Command string `json:"command"`
		} `json:"containers"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &got))

	assert.Equal(t, uint64(7), got.Generation)
	require.Len(t, got.Containers, 2)
	assert.Equal(t, "abc123def456", got.Containers[0].ShortID)
	assert.Equal(t, "web", got.Containers[0].Name)
	assert.Equal(t, "running", got.Containers[0].Status)
	assert.Equal(t, "idle", got.Containers[0].Command)
	assert.Equal(t, "exited", got.Containers[1].Status)
	assert.Equal(t, "dispatching", got.Containers[1].Command)
	assert.Empty(t, got.Error)
}

func TestListContainers_ServesStaleSnapshotWithError(t *testing.T) {
	svc := newFakeService()
	svc.snapshot = &domain.Snapshot{Generation: 1, Containers: []domain.Container{{ID: "a"}}}
	svc.lastErr = &domain.ConnectionError{Cause: errors.New("refused")}
	app := NewApp(svc)

	status, body := doRequest(t, app, fiber.MethodGet, "/api/v1/containers")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"id":"a"`)
	assert.Contains(t, string(body), "refused")
}

func TestRefreshContainers(t *testing.T) {
	svc := newFakeService()
	app := NewApp(svc)

	status, _ := doRequest(t, app, fiber.MethodPost, "/api/v1/containers/refresh")
	assert.Equal(t, fiber.StatusAccepted, status)
	assert.Equal(t, 1, svc.refreshes)
}

func TestStartStopContainer(t *testing.T) {
	svc := newFakeService()
	app := NewApp(svc)

	status, body := doRequest(t, app, fiber.MethodPost, "/api/v1/containers/abc123/start")
	assert.Equal(t, fiber.StatusAccepted, status)
	assert.JSONEq(t, `{"id":"abc123","command":"start"}`, string(body))

	status, _ = doRequest(t, app, fiber.MethodPost, "/api/v1/containers/def456/stop")
	assert.Equal(t, fiber.StatusAccepted, status)

	assert.Equal(t, []string{"abc123"}, svc.started)
	assert.Equal(t, []string{"def456"}, svc.stopped)
}

func TestUnknownRoute(t *testing.T) {
	app := NewApp(newFakeService())

	status, _ := doRequest(t, app, fiber.MethodPost, "/api/v1/containers/abc/restart")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHealth(t *testing.T) {
	svc := newFakeService()
	app := NewApp(svc)

	status, body := doRequest(t, app, fiber.MethodGet, "/healthz")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	svc.pingErr = &domain.ConnectionError{Cause: errors.New("refused")}
	status, body = doRequest(t, app, fiber.MethodGet, "/healthz")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), "unavailable")
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	app := NewApp(newFakeService())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}
