package repositories

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/avatarctic/quantum-studio/internal/application/services"
	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
	"github.com/avatarctic/quantum-studio/internal/core/domain/music"
	"github.com/avatarctic/quantum-studio/internal/core/domain/quantum"
	"github.com/avatarctic/quantum-studio/internal/core/domain/user"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

// Cache keys follow "<resource-class>_<ownerId>".
func ChatMessagesKey(userID int64) string    { return fmt.Sprintf("chat_messages_%d", userID) }
func MusicProjectsKey(userID int64) string   { return fmt.Sprintf("music_projects_%d", userID) }
func MusicProjectKey(id int64) string        { return fmt.Sprintf("music_project_%d", id) }
func QuantumProjectsKey(userID int64) string { return fmt.Sprintf("quantum_projects_%d", userID) }
func SecureMessagesKey(userID int64) string  { return fmt.Sprintf("secure_messages_%d", userID) }
func SecureFilesKey(userID int64) string     { return fmt.Sprintf("secure_files_%d", userID) }
func UserKey(id int64) string                { return fmt.Sprintf("user_%d", id) }

// CacheTTLs holds the per-resource expiry used by the caching decorators.
type CacheTTLs struct {
	ChatMessages    time.Duration
	MusicProjects   time.Duration
	MusicProject    time.Duration
	QuantumProjects time.Duration
	SecureMessages  time.Duration
	SecureFiles     time.Duration
	User            time.Duration
}

// DefaultCacheTTLs favours short lifetimes for lists that change in the background.
func DefaultCacheTTLs() CacheTTLs {
	return CacheTTLs{
		ChatMessages:    30 * time.Second,
		MusicProjects:   10 * time.Second,
		MusicProject:    10 * time.Second,
		QuantumProjects: 5 * time.Minute,
		SecureMessages:  30 * time.Second,
		SecureFiles:     5 * time.Minute,
		User:            10 * time.Minute,
	}
}

// singleflight group for coalescing cache-miss loads in-process
var sf singleflight.Group

// loadListWithSingleflight serves key from cache, or coalesces concurrent misses into a
// single loader call whose result is cached for ttl. The shared load ignores the first
// caller's cancellation.
func loadListWithSingleflight[T any](cache ports.CacheService, ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) ([]T, error)) ([]T, error) {
	if v, ok := services.GetCached[[]T](ctx, cache, key); ok {
		return *v, nil
	}
	res, err, _ := sf.Do(key, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		if v, ok := services.GetCached[[]T](lctx, cache, key); ok {
			return *v, nil
		}
		all, err := loader(lctx)
		if err != nil {
			return nil, err
		}
		if cache != nil {
			cache.Set(lctx, key, all, ttl)
		}
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	all, ok := res.([]T)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return all, nil
}

func invalidate(cache ports.CacheService, ctx context.Context, keys ...string) {
	if cache != nil {
		cache.Delete(ctx, keys...)
	}
}

// CachingChatRepository decorates a ChatRepository with cache-aside on the history list.
type CachingChatRepository struct {
	inner ports.ChatRepository
	cache ports.CacheService
	ttl   time.Duration
}

func NewCachingChatRepository(inner ports.ChatRepository, cache ports.CacheService, ttl time.Duration) ports.ChatRepository {
	return &CachingChatRepository{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachingChatRepository) Create(ctx context.Context, msg *chat.ChatMessage) error {
	if err := c.inner.Create(ctx, msg); err != nil {
		return err
	}
	invalidate(c.cache, ctx, ChatMessagesKey(msg.UserID))
	return nil
}

func (c *CachingChatRepository) ListByUser(ctx context.Context, userID int64) ([]*chat.ChatMessage, error) {
	return loadListWithSingleflight(c.cache, ctx, ChatMessagesKey(userID), c.ttl, func(ctx context.Context) ([]*chat.ChatMessage, error) {
		return c.inner.ListByUser(ctx, userID)
	})
}

func (c *CachingChatRepository) ClearByUser(ctx context.Context, userID int64) error {
	if err := c.inner.ClearByUser(ctx, userID); err != nil {
		return err
	}
	invalidate(c.cache, ctx, ChatMessagesKey(userID))
	return nil
}

// CachingMusicRepository caches the per-user list and single projects.
type CachingMusicRepository struct {
	inner      ports.MusicRepository
	cache      ports.CacheService
	listTTL    time.Duration
	projectTTL time.Duration
}

func NewCachingMusicRepository(inner ports.MusicRepository, cache ports.CacheService, listTTL, projectTTL time.Duration) ports.MusicRepository {
	return &CachingMusicRepository{inner: inner, cache: cache, listTTL: listTTL, projectTTL: projectTTL}
}

func (c *CachingMusicRepository) Create(ctx context.Context, p *music.Project) error {
	if err := c.inner.Create(ctx, p); err != nil {
		return err
	}
	invalidate(c.cache, ctx, MusicProjectsKey(p.UserID))
	return nil
}

func (c *CachingMusicRepository) GetByID(ctx context.Context, id int64) (*music.Project, error) {
	if v, ok := services.GetCached[music.Project](ctx, c.cache, MusicProjectKey(id)); ok {
		return v, nil
	}
	p, err := c.inner.GetByID(ctx, id)
	if err == nil && c.cache != nil {
		c.cache.Set(ctx, MusicProjectKey(id), p, c.projectTTL)
	}
	return p, err
}

func (c *CachingMusicRepository) ListByUser(ctx context.Context, userID int64) ([]*music.Project, error) {
	return loadListWithSingleflight(c.cache, ctx, MusicProjectsKey(userID), c.listTTL, func(ctx context.Context) ([]*music.Project, error) {
		return c.inner.ListByUser(ctx, userID)
	})
}

func (c *CachingMusicRepository) Update(ctx context.Context, id int64, u music.Update) (*music.Project, error) {
	p, err := c.inner.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	invalidate(c.cache, ctx, MusicProjectsKey(p.UserID), MusicProjectKey(id))
	return p, nil
}

// CachingQuantumProjectRepository caches the per-user project list.
type CachingQuantumProjectRepository struct {
	inner ports.QuantumProjectRepository
	cache ports.CacheService
	ttl   time.Duration
}

func NewCachingQuantumProjectRepository(inner ports.QuantumProjectRepository, cache ports.CacheService, ttl time.Duration) ports.QuantumProjectRepository {
	return &CachingQuantumProjectRepository{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachingQuantumProjectRepository) Create(ctx context.Context, p *quantum.Project) error {
	if err := c.inner.Create(ctx, p); err != nil {
		return err
	}
	invalidate(c.cache, ctx, QuantumProjectsKey(p.UserID))
	return nil
}

func (c *CachingQuantumProjectRepository) ListByUser(ctx context.Context, userID int64) ([]*quantum.Project, error) {
	return loadListWithSingleflight(c.cache, ctx, QuantumProjectsKey(userID), c.ttl, func(ctx context.Context) ([]*quantum.Project, error) {
		return c.inner.ListByUser(ctx, userID)
	})
}

// CachingSecureMessageRepository caches the per-user message list.
type CachingSecureMessageRepository struct {
	inner ports.SecureMessageRepository
	cache ports.CacheService
	ttl   time.Duration
}

func NewCachingSecureMessageRepository(inner ports.SecureMessageRepository, cache ports.CacheService, ttl time.Duration) ports.SecureMessageRepository {
	return &CachingSecureMessageRepository{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachingSecureMessageRepository) Create(ctx context.Context, m *quantum.SecureMessage) error {
	if err := c.inner.Create(ctx, m); err != nil {
		return err
	}
	invalidate(c.cache, ctx, SecureMessagesKey(m.UserID))
	return nil
}

func (c *CachingSecureMessageRepository) ListByUser(ctx context.Context, userID int64) ([]*quantum.SecureMessage, error) {
	return loadListWithSingleflight(c.cache, ctx, SecureMessagesKey(userID), c.ttl, func(ctx context.Context) ([]*quantum.SecureMessage, error) {
		return c.inner.ListByUser(ctx, userID)
	})
}

// CachingSecureFileRepository caches the per-user file list.
type CachingSecureFileRepository struct {
	inner ports.SecureFileRepository
	cache ports.CacheService
	ttl   time.Duration
}

func NewCachingSecureFileRepository(inner ports.SecureFileRepository, cache ports.CacheService, ttl time.Duration) ports.SecureFileRepository {
	return &CachingSecureFileRepository{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachingSecureFileRepository) Create(ctx context.Context, f *quantum.SecureFile) error {
	if err := c.inner.Create(ctx, f); err != nil {
		return err
	}
	invalidate(c.cache, ctx, SecureFilesKey(f.UserID))
	return nil
}

func (c *CachingSecureFileRepository) ListByUser(ctx context.Context, userID int64) ([]*quantum.SecureFile, error) {
	return loadListWithSingleflight(c.cache, ctx, SecureFilesKey(userID), c.ttl, func(ctx context.Context) ([]*quantum.SecureFile, error) {
		return c.inner.ListByUser(ctx, userID)
	})
}

// CachingUserRepository: cache GetByID only.
type CachingUserRepository struct {
	inner ports.UserRepository
	cache ports.CacheService
	ttl   time.Duration
}

func NewCachingUserRepository(inner ports.UserRepository, cache ports.CacheService, ttl time.Duration) ports.UserRepository {
	return &CachingUserRepository{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachingUserRepository) Create(ctx context.Context, u *user.User) error {
	if err := c.inner.Create(ctx, u); err != nil {
		return err
	}
	invalidate(c.cache, ctx, UserKey(u.ID))
	return nil
}

func (c *CachingUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if v, ok := services.GetCached[user.User](ctx, c.cache, UserKey(id)); ok {
		return v, nil
	}
	u, err := c.inner.GetByID(ctx, id)
	if err == nil && c.cache != nil {
		c.cache.Set(ctx, UserKey(id), u, c.ttl)
	}
	return u, err
}

func (c *CachingUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return c.inner.GetByUsername(ctx, username)
}

// Simple validation to ensure decorators implement interfaces at compile time
var _ ports.ChatRepository = (*CachingChatRepository)(nil)
var _ ports.MusicRepository = (*CachingMusicRepository)(nil)
var _ ports.QuantumProjectRepository = (*CachingQuantumProjectRepository)(nil)
var _ ports.SecureMessageRepository = (*CachingSecureMessageRepository)(nil)
var _ ports.SecureFileRepository = (*CachingSecureFileRepository)(nil)
var _ ports.UserRepository = (*CachingUserRepository)(nil)
