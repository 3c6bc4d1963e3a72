package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/quantum-studio/internal/application/services"
	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
	"github.com/avatarctic/quantum-studio/internal/core/domain/music"
	"github.com/avatarctic/quantum-studio/internal/core/domain/user"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/cache"
	impl "github.com/avatarctic/quantum-studio/internal/infrastructure/httpserver"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/repositories"
	tmocks "github.com/avatarctic/quantum-studio/test/mocks"
)

// newStackServer wires the real services over the in-memory store and cache.
func newStackServer(t *testing.T) (*impl.Server, ports.CacheService) {
	t.Helper()
	logger, _ := test.NewNullLogger()

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	cacheSvc := services.NewCacheService(mem, time.Hour, logger)

	store := repositories.NewMemoryStore()
	ttls := repositories.DefaultCacheTTLs()
	chatRepo := repositories.NewCachingChatRepository(store.Chat(), cacheSvc, ttls.ChatMessages)
	musicRepo := repositories.NewCachingMusicRepository(store.Music(), cacheSvc, ttls.MusicProjects, ttls.MusicProject)
	userRepo := repositories.NewCachingUserRepository(store.Users(), cacheSvc, ttls.User)

	providers := []ports.LLMProvider{&tmocks.LLMProviderMock{Model: chat.ModelOpenAI}, &tmocks.LLMProviderMock{Model: chat.ModelAnthropic, NotConfigured: true}}
	userSvc := services.NewUserService(userRepo, logger)
	u, err := userSvc.EnsureDefaultUser(context.Background(), &user.CreateUserRequest{Username: "eva rados", Password: "demo"})
	require.NoError(t, err)

	musicSvc := services.NewMusicService(musicRepo, services.MusicTimings{ProcessingDelay: 10 * time.Millisecond, CompleteDelay: 10 * time.Millisecond, GeneratedDuration: 222}, logger)
	t.Cleanup(func() { _ = musicSvc.Shutdown(context.Background()) })

	deps := impl.ServerDeps{
		ChatService:    services.NewChatService(chatRepo, providers, logger),
		MusicService:   musicSvc,
		QuantumService: &tmocks.QuantumServiceMock{},
		UserService:    userSvc,
		SystemService:  services.NewSystemService(providers, cacheSvc),
		Cache:          cacheSvc,
		DefaultUserID:  u.ID,
	}
	return impl.NewServer(&impl.ServerConfig{}, logger, deps), cacheSvc
}

func TestAPI_ChatHistoryIsInvalidatedOnWrite(t *testing.T) {
	srv, cacheSvc := newStackServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/chat/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
	require.True(t, cacheSvc.Exists(context.Background(), repositories.ChatMessagesKey(1)))

	rec = doJSON(t, srv, http.MethodPost, "/api/chat/message", map[string]string{"content": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/chat/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []chat.ChatMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 2)
	require.Equal(t, chat.RoleUser, msgs[0].Role)
	require.Equal(t, chat.RoleAssistant, msgs[1].Role)

	rec = doJSON(t, srv, http.MethodDelete, "/api/chat/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, srv, http.MethodGet, "/api/chat/messages", nil)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestAPI_MusicProjectAdvancesPastCachedStatus(t *testing.T) {
	srv, _ := newStackServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/music/generate", map[string]string{"title": "Aurora"})
	require.Equal(t, http.StatusOK, rec.Code)
	var p music.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, music.StatusDraft, p.Status)

	path := "/api/music/project/" + strconv.FormatInt(p.ID, 10)
	rec = doJSON(t, srv, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		var got music.Project
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			return false
		}
		return got.Status == music.StatusComplete && got.AudioURL != nil && *got.AudioURL == "/api/music/audio/"+strconv.FormatInt(p.ID, 10)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAPI_StatusReportsCacheBackendAndProviders(t *testing.T) {
	srv, _ := newStackServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/system/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, map[string]any{"backend": "memory"}, body["cache"])
	apis := body["apis"].(map[string]any)
	require.Equal(t, "connected", apis["openai"])
	require.Equal(t, "disconnected", apis["anthropic"])
	require.Equal(t, "connected", apis["coingecko"])

	rec = doJSON(t, srv, http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
