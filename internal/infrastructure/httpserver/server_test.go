package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/quantum-studio/internal/application/services"
	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
	"github.com/avatarctic/quantum-studio/internal/core/domain/music"
	"github.com/avatarctic/quantum-studio/internal/core/domain/quantum"
	"github.com/avatarctic/quantum-studio/internal/core/domain/system"
	"github.com/avatarctic/quantum-studio/internal/core/domain/user"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/health"
	impl "github.com/avatarctic/quantum-studio/internal/infrastructure/httpserver"
	tmocks "github.com/avatarctic/quantum-studio/test/mocks"
)

const testUserID int64 = 7

func defaultDeps() impl.ServerDeps {
	return impl.ServerDeps{
		ChatService:    &tmocks.ChatServiceMock{},
		MusicService:   &tmocks.MusicServiceMock{},
		QuantumService: &tmocks.QuantumServiceMock{},
		UserService:    &tmocks.UserServiceMock{},
		SystemService:  &tmocks.SystemServiceMock{},
		Cache:          services.NewCacheService(&tmocks.CacheMock{}, 0, nil),
		DefaultUserID:  testUserID,
	}
}

func newTestServer(t *testing.T, deps impl.ServerDeps) *impl.Server {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cfg := &impl.ServerConfig{Host: "127.0.0.1", Port: "0", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second, UploadMaxBytes: 1024}
	return impl.NewServer(cfg, logger, deps)
}

func doJSON(t *testing.T, srv *impl.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestChatEndpoints(t *testing.T) {
	var sent *chat.SendMessageRequest
	cleared := int64(0)
	deps := defaultDeps()
	deps.ChatService = &tmocks.ChatServiceMock{
		ListMessagesFn: func(ctx context.Context, userID int64) ([]*chat.ChatMessage, error) {
			require.Equal(t, testUserID, userID)
			return []*chat.ChatMessage{{ID: 1, UserID: userID, Content: "hi", Role: chat.RoleUser}}, nil
		},
		SendMessageFn: func(ctx context.Context, userID int64, req *chat.SendMessageRequest) (*chat.Exchange, error) {
			sent = req
			return &chat.Exchange{
				UserMessage:      &chat.ChatMessage{ID: 2, Content: req.Content, Role: chat.RoleUser},
				AssistantMessage: &chat.ChatMessage{ID: 3, Content: "hello", Role: chat.RoleAssistant},
			}, nil
		},
		ClearMessagesFn: func(ctx context.Context, userID int64) error {
			cleared = userID
			return nil
		},
	}
	srv := newTestServer(t, deps)

	rec := doJSON(t, srv, http.MethodGet, "/api/chat/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []chat.ChatMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 1)

	rec = doJSON(t, srv, http.MethodPost, "/api/chat/message", map[string]string{"content": "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Message content is required", errorMessage(t, rec))
	require.Nil(t, sent)

	rec = doJSON(t, srv, http.MethodPost, "/api/chat/message", map[string]string{"content": "hi", "model": "anthropic"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, chat.ModelAnthropic, sent.Model)
	var ex chat.Exchange
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ex))
	require.Equal(t, "hello", ex.AssistantMessage.Content)

	rec = doJSON(t, srv, http.MethodDelete, "/api/chat/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true}`, rec.Body.String())
	require.Equal(t, testUserID, cleared)
}

func TestChatEndpoints_Errors(t *testing.T) {
	deps := defaultDeps()
	deps.ChatService = &tmocks.ChatServiceMock{
		ListMessagesFn: func(ctx context.Context, userID int64) ([]*chat.ChatMessage, error) {
			return nil, errors.New("db down")
		},
	}
	srv := newTestServer(t, deps)

	rec := doJSON(t, srv, http.MethodGet, "/api/chat/messages", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Failed to fetch chat messages", errorMessage(t, rec))

	rec = doJSON(t, srv, http.MethodPost, "/api/chat/generate-code", map[string]string{"model": "openai"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Code prompt is required", errorMessage(t, rec))

	rec = doJSON(t, srv, http.MethodPost, "/api/chat/message", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMusicEndpoints(t *testing.T) {
	deps := defaultDeps()
	deps.MusicService = &tmocks.MusicServiceMock{
		GetProjectFn: func(ctx context.Context, id int64) (*music.Project, error) {
			if id == 5 {
				return &music.Project{ID: 5, Title: "Song", Status: music.StatusProcessing}, nil
			}
			return nil, music.ErrProjectNotFound
		},
	}
	srv := newTestServer(t, deps)

	rec := doJSON(t, srv, http.MethodGet, "/api/music/project/5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p music.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, music.StatusProcessing, p.Status)

	rec = doJSON(t, srv, http.MethodGet, "/api/music/project/6", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Project not found", errorMessage(t, rec))

	rec = doJSON(t, srv, http.MethodGet, "/api/music/project/abc", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/music/generate", map[string]string{"genre": "pop"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/music/generate", map[string]string{"title": "Song", "genre": "pop"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, music.StatusDraft, p.Status)
	require.Equal(t, testUserID, p.UserID)
}

func TestQuantumEndpoints(t *testing.T) {
	srv := newTestServer(t, defaultDeps())

	rec := doJSON(t, srv, http.MethodPost, "/api/quantum/projects", map[string]any{"name": "Q", "priority": "urgent"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, quantum.ErrInvalidPriority.Error(), errorMessage(t, rec))

	rec = doJSON(t, srv, http.MethodPost, "/api/quantum/projects", map[string]any{"name": "Q"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/quantum/messages", map[string]string{"content": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, quantum.ErrAuthorRequired.Error(), errorMessage(t, rec))

	rec = doJSON(t, srv, http.MethodPost, "/api/quantum/messages", map[string]string{"content": "x", "author": "eva"})
	require.Equal(t, http.StatusOK, rec.Code)
	var m quantum.SecureMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	require.True(t, m.Encrypted)

	for _, path := range []string{"/api/quantum/projects", "/api/quantum/messages", "/api/quantum/files"} {
		rec = doJSON(t, srv, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.JSONEq(t, `[]`, rec.Body.String(), path)
	}
}

func multipartUpload(t *testing.T, field, filename string, content []byte, watermark string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	if watermark != "" {
		require.NoError(t, w.WriteField("watermark", watermark))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestUploadEndpoint(t *testing.T) {
	var gotUpload *quantum.Upload
	var gotBody []byte
	deps := defaultDeps()
	deps.QuantumService = &tmocks.QuantumServiceMock{
		UploadFileFn: func(ctx context.Context, userID int64, upload *quantum.Upload, body io.Reader) (*quantum.SecureFile, error) {
			gotUpload = upload
			b, err := io.ReadAll(body)
			require.NoError(t, err)
			gotBody = b
			return &quantum.SecureFile{ID: 1, UserID: userID, OriginalName: upload.OriginalName, Size: upload.Size, Encrypted: true, Watermarked: upload.Watermark}, nil
		},
	}
	srv := newTestServer(t, deps)

	send := func(body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/quantum/upload", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, req)
		return rec
	}

	body, ct := multipartUpload(t, "", "", nil, "true")
	rec := send(body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "No file uploaded", errorMessage(t, rec))
	require.Nil(t, gotUpload)

	body, ct = multipartUpload(t, "file", "big.bin", bytes.Repeat([]byte("x"), 4096), "")
	rec = send(body, ct)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Nil(t, gotUpload)

	body, ct = multipartUpload(t, "file", "notes.txt", []byte("secret"), "true")
	rec = send(body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "notes.txt", gotUpload.OriginalName)
	require.Equal(t, int64(6), gotUpload.Size)
	require.True(t, gotUpload.Watermark)
	require.Equal(t, "secret", string(gotBody))
	var f quantum.SecureFile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	require.True(t, f.Encrypted)
	require.True(t, f.Watermarked)
}

func TestSystemAndUserEndpoints(t *testing.T) {
	deps := defaultDeps()
	deps.SystemService = &tmocks.SystemServiceMock{StatusValue: &system.Status{
		DeviceAuthentication: "verified",
		APIs:                 map[string]string{"openai": system.APIConnected},
		Cache:                system.CacheStatus{Backend: "memory"},
	}}
	deps.UserService = &tmocks.UserServiceMock{
		GetUserFn: func(ctx context.Context, id int64) (*user.User, error) {
			return &user.User{ID: id, Username: "eva", PasswordHash: "hash", Initials: "E"}, nil
		},
	}
	srv := newTestServer(t, deps)

	rec := doJSON(t, srv, http.MethodGet, "/api/system/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st system.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.Equal(t, "verified", st.DeviceAuthentication)
	require.Equal(t, "memory", st.Cache.Backend)

	rec = doJSON(t, srv, http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "hash")
	var u user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	require.Equal(t, testUserID, u.ID)
}

func TestUserEndpoint_NotFound(t *testing.T) {
	srv := newTestServer(t, defaultDeps())
	rec := doJSON(t, srv, http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminFlushCache(t *testing.T) {
	backend := &tmocks.CacheMock{}
	backend.Put("chat_messages_7", []byte(`[]`))
	deps := defaultDeps()
	deps.Cache = services.NewCacheService(backend, 0, nil)
	srv := newTestServer(t, deps)

	rec := doJSON(t, srv, http.MethodDelete, "/api/admin/cache", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true,"backend":"mock"}`, rec.Body.String())
	ok, err := backend.Exists(context.Background(), "chat_messages_7")
	require.NoError(t, err)
	require.False(t, ok)

	deps.Cache = services.NewCacheService(tmocks.FailingCache(), 0, nil)
	srv = newTestServer(t, deps)
	rec = doJSON(t, srv, http.MethodDelete, "/api/admin/cache", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Failed to flush cache", errorMessage(t, rec))
}

type healthBody struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

func getHealth(t *testing.T, checkers ...ports.HealthChecker) (int, healthBody) {
	t.Helper()
	deps := defaultDeps()
	deps.HealthCheckers = checkers
	rec := doJSON(t, newTestServer(t, deps), http.MethodGet, "/health", nil)
	var body healthBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthEndpoint_AllHealthy(t *testing.T) {
	code, body := getHealth(t,
		&tmocks.HealthCheckerMock{NameValue: "database"},
		health.NewCacheHealthChecker(&tmocks.CacheMock{}),
	)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "healthy", body.Dependencies["database"])
	require.Equal(t, "healthy", body.Dependencies["cache:mock"])
}

func TestHealthEndpoint_CacheDownIsDegraded(t *testing.T) {
	code, body := getHealth(t,
		&tmocks.HealthCheckerMock{NameValue: "database"},
		health.NewCacheHealthChecker(tmocks.FailingCache()),
	)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "degraded", body.Status)
	require.Equal(t, "healthy", body.Dependencies["database"])
	require.Equal(t, "unhealthy", body.Dependencies["cache:mock"])

	code, body = getHealth(t,
		&tmocks.HealthCheckerMock{NameValue: "database"},
		&tmocks.HealthCheckerMock{NameValue: "redis", Err: errors.New("connection refused"), OptionalValue: true},
	)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "degraded", body.Status)
}

func TestHealthEndpoint_DatabaseDownIsUnavailable(t *testing.T) {
	code, body := getHealth(t,
		&tmocks.HealthCheckerMock{NameValue: "database", Err: errors.New("connection refused")},
		health.NewCacheHealthChecker(tmocks.FailingCache()),
	)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "unhealthy", body.Status)
	require.Equal(t, "unhealthy", body.Dependencies["database"])
	require.Equal(t, "unhealthy", body.Dependencies["cache:mock"])
}

func TestServerErrorsAreLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	deps := defaultDeps()
	deps.QuantumService = &tmocks.QuantumServiceMock{
		ListFilesFn: func(ctx context.Context, userID int64) ([]*quantum.SecureFile, error) {
			return nil, errors.New("relation does not exist")
		},
	}
	srv := impl.NewServer(&impl.ServerConfig{}, logger, deps)

	rec := doJSON(t, srv, http.MethodGet, "/api/quantum/files", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Failed to fetch secure files", errorMessage(t, rec))
	require.NotContains(t, rec.Body.String(), "relation")

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Message == "Failed to fetch secure files" {
			require.EqualError(t, e.Data[logrus.ErrorKey].(error), "relation does not exist")
			found = true
		}
	}
	require.True(t, found)
}

func TestSecurityHeadersOnEveryResponse(t *testing.T) {
	srv := newTestServer(t, defaultDeps())

	for _, path := range []string{"/health", "/api/chat/messages", "/api/does-not-exist"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"), path)
		require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"), path)
		require.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"), path)
		require.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"), path)
	}
}

func TestRateLimitedRequestsAreRejected(t *testing.T) {
	reset := time.Now().Add(time.Minute)
	limiter := &tmocks.RateLimiterServiceMock{
		AllowFn: func(ctx context.Context, client string) (bool, int, int, time.Time, error) {
			return false, 0, 1000, reset, nil
		},
	}
	deps := defaultDeps()
	deps.RateLimiter = limiter
	srv := newTestServer(t, deps)

	rec := doJSON(t, srv, http.MethodGet, "/api/chat/messages", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "Rate limit exceeded", errorMessage(t, rec))
	require.Equal(t, "1000", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, strconv.FormatInt(reset.Unix(), 10), rec.Header().Get("X-RateLimit-Reset"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, []string{"192.0.2.1"}, limiter.Clients)

	rec = doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
