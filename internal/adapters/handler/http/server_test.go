package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-tally/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/events"
	"github.com/comitanigiacomo/kanso-tally/internal/core/services"
	"github.com/comitanigiacomo/kanso-tally/internal/core/toggle"
)

const testSecret = "test-secret-for-handlers-0123456789"

// testServer wires the whole API over the in-memory repositories.
type testServer struct {
	router  *gin.Engine
	tracker *services.TrackerService
	items   *repository.InMemoryItemRepository
	records *repository.InMemoryRecordRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	records := repository.NewInMemoryRecordRepository()
	items := repository.NewInMemoryItemRepository(records)
	users := repository.NewInMemoryUserRepository()
	cal := domain.MustCalendar(time.UTC)
	bus := events.NewBus()

	tokens := services.NewTokenService(testSecret, "kanso-test", time.Hour, users)
	exec := toggle.NewExecutor(cal, items, records, bus)
	tracker := services.NewTrackerService(cal, items, records, exec, 7, nil)
	bus.Subscribe(tracker.OnChanged)

	recordSvc := services.NewRecordService(records, items, cal, bus)
	recordSvc.SetCellLocker(exec)

	router := NewRouter(RouterDependencies{
		AuthHandler:    NewAuthHandler(services.NewAuthService(users, tokens)),
		ItemHandler:    NewItemHandler(services.NewItemService(items, cal, bus)),
		RecordHandler:  NewRecordHandler(recordSvc),
		TrackerHandler: NewTrackerHandler(tracker),
		StatsHandler:   NewStatsHandler(services.NewStatsService(items, tracker, cal)),
		Tokens:         tokens,
		StartTime:      time.Now(),
	})

	return &testServer{router: router, tracker: tracker, items: items, records: records}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signUp registers email and returns a bearer token for it.
func (s *testServer) signUp(t *testing.T, email string) string {
	t.Helper()

	creds := map[string]string{"email": email, "password": "password123"}
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (s *testServer) createItem(t *testing.T, token string, body map[string]any) domain.TrackedItem {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/v1/items", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var item domain.TrackedItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	return item
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
