package mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
	"github.com/avatarctic/quantum-studio/internal/core/domain/music"
	"github.com/avatarctic/quantum-studio/internal/core/domain/quantum"
	"github.com/avatarctic/quantum-studio/internal/core/domain/system"
	"github.com/avatarctic/quantum-studio/internal/core/domain/user"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

// ErrBackendDown is returned by FailingCache for every call.
var ErrBackendDown = errors.New("cache backend unavailable")

// SetCall records a single Cache.Set invocation.
type SetCall struct {
	Key   string
	Value []byte
	TTL   time.Duration
}

// CacheMock is a lightweight ports.Cache. Unset function fields fall back to an
// in-memory map without expiry, and every Set and Delete is recorded.
type CacheMock struct {
	GetFn      func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn      func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFn   func(ctx context.Context, key string) (int64, error)
	ExistsFn   func(ctx context.Context, key string) (bool, error)
	FlushAllFn func(ctx context.Context) error

	mu      sync.Mutex
	data    map[string][]byte
	Sets    []SetCall
	Deletes []string
	Gets    int
}

func (m *CacheMock) Backend() string { return "mock" }

func (m *CacheMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	m.Gets++
	m.mu.Unlock()
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *CacheMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.Sets = append(m.Sets, SetCall{Key: key, Value: value, TTL: ttl})
	m.mu.Unlock()
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func (m *CacheMock) Delete(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	m.Deletes = append(m.Deletes, key)
	m.mu.Unlock()
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		delete(m.data, key)
		return 1, nil
	}
	return 0, nil
}

func (m *CacheMock) Exists(ctx context.Context, key string) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *CacheMock) FlushAll(ctx context.Context) error {
	if m.FlushAllFn != nil {
		return m.FlushAllFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string][]byte{}
	return nil
}

// Put seeds a raw entry.
func (m *CacheMock) Put(key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = raw
}

// DeletedKeys returns a copy of every key passed to Delete so far.
func (m *CacheMock) DeletedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deletes...)
}

// FailingCache returns a CacheMock whose every operation fails.
func FailingCache() *CacheMock {
	return &CacheMock{
		GetFn:      func(context.Context, string) ([]byte, bool, error) { return nil, false, ErrBackendDown },
		SetFn:      func(context.Context, string, []byte, time.Duration) error { return ErrBackendDown },
		DeleteFn:   func(context.Context, string) (int64, error) { return 0, ErrBackendDown },
		ExistsFn:   func(context.Context, string) (bool, error) { return false, ErrBackendDown },
		FlushAllFn: func(context.Context) error { return ErrBackendDown },
	}
}

// ChatRepositoryMock is a lightweight mock for ChatRepository
type ChatRepositoryMock struct {
	CreateFn      func(ctx context.Context, msg *chat.ChatMessage) error
	ListByUserFn  func(ctx context.Context, userID int64) ([]*chat.ChatMessage, error)
	ClearByUserFn func(ctx context.Context, userID int64) error
}

func (m *ChatRepositoryMock) Create(ctx context.Context, msg *chat.ChatMessage) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, msg)
	}
	return nil
}
func (m *ChatRepositoryMock) ListByUser(ctx context.Context, userID int64) ([]*chat.ChatMessage, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	return []*chat.ChatMessage{}, nil
}
func (m *ChatRepositoryMock) ClearByUser(ctx context.Context, userID int64) error {
	if m.ClearByUserFn != nil {
		return m.ClearByUserFn(ctx, userID)
	}
	return nil
}

// MusicRepositoryMock is a lightweight mock for MusicRepository
type MusicRepositoryMock struct {
	CreateFn     func(ctx context.Context, p *music.Project) error
	GetByIDFn    func(ctx context.Context, id int64) (*music.Project, error)
	ListByUserFn func(ctx context.Context, userID int64) ([]*music.Project, error)
	UpdateFn     func(ctx context.Context, id int64, u music.Update) (*music.Project, error)
}

func (m *MusicRepositoryMock) Create(ctx context.Context, p *music.Project) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}
func (m *MusicRepositoryMock) GetByID(ctx context.Context, id int64) (*music.Project, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, music.ErrProjectNotFound
}
func (m *MusicRepositoryMock) ListByUser(ctx context.Context, userID int64) ([]*music.Project, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	return []*music.Project{}, nil
}
func (m *MusicRepositoryMock) Update(ctx context.Context, id int64, u music.Update) (*music.Project, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, u)
	}
	return nil, music.ErrProjectNotFound
}

// UserRepositoryMock is a lightweight mock for UserRepository
type UserRepositoryMock struct {
	CreateFn        func(ctx context.Context, u *user.User) error
	GetByIDFn       func(ctx context.Context, id int64) (*user.User, error)
	GetByUsernameFn func(ctx context.Context, username string) (*user.User, error)
}

func (m *UserRepositoryMock) Create(ctx context.Context, u *user.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}
func (m *UserRepositoryMock) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, user.ErrUserNotFound
}
func (m *UserRepositoryMock) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, user.ErrUserNotFound
}

// LLMProviderMock is a lightweight mock for LLMProvider
type LLMProviderMock struct {
	Model          chat.Model
	NotConfigured  bool
	ChatFn         func(ctx context.Context, message string) (string, error)
	GenerateCodeFn func(ctx context.Context, prompt string) (*chat.CodeResult, error)
}

func (m *LLMProviderMock) Name() chat.Model { return m.Model }
func (m *LLMProviderMock) Configured() bool { return !m.NotConfigured }
func (m *LLMProviderMock) GenerateChatResponse(ctx context.Context, message string) (string, error) {
	if m.ChatFn != nil {
		return m.ChatFn(ctx, message)
	}
	return fmt.Sprintf("%s reply: %s", m.Model, message), nil
}
func (m *LLMProviderMock) GenerateCode(ctx context.Context, prompt string) (*chat.CodeResult, error) {
	if m.GenerateCodeFn != nil {
		return m.GenerateCodeFn(ctx, prompt)
	}
	return &chat.CodeResult{Code: "// " + prompt, Explanation: string(m.Model)}, nil
}

// FileStoreMock records saved bodies in memory.
type FileStoreMock struct {
	SaveFn   func(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error)
	DeleteFn func(ctx context.Context, name string) error

	mu      sync.Mutex
	Saved   map[string][]byte
	Deleted []string
}

func (m *FileStoreMock) Save(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error) {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, name, contentType, body, size)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Saved == nil {
		m.Saved = map[string][]byte{}
	}
	m.Saved[name] = b
	return "mem/" + name, nil
}

func (m *FileStoreMock) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	m.Deleted = append(m.Deleted, name)
	m.mu.Unlock()
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Saved, name)
	return nil
}

// ChatServiceMock is a lightweight mock for ChatService
type ChatServiceMock struct {
	ListMessagesFn  func(ctx context.Context, userID int64) ([]*chat.ChatMessage, error)
	SendMessageFn   func(ctx context.Context, userID int64, req *chat.SendMessageRequest) (*chat.Exchange, error)
	GenerateCodeFn  func(ctx context.Context, req *chat.GenerateCodeRequest) (*chat.CodeResult, error)
	ClearMessagesFn func(ctx context.Context, userID int64) error
}

func (m *ChatServiceMock) ListMessages(ctx context.Context, userID int64) ([]*chat.ChatMessage, error) {
	if m.ListMessagesFn != nil {
		return m.ListMessagesFn(ctx, userID)
	}
	return []*chat.ChatMessage{}, nil
}
func (m *ChatServiceMock) SendMessage(ctx context.Context, userID int64, req *chat.SendMessageRequest) (*chat.Exchange, error) {
	if m.SendMessageFn != nil {
		return m.SendMessageFn(ctx, userID, req)
	}
	return &chat.Exchange{}, nil
}
func (m *ChatServiceMock) GenerateCode(ctx context.Context, req *chat.GenerateCodeRequest) (*chat.CodeResult, error) {
	if m.GenerateCodeFn != nil {
		return m.GenerateCodeFn(ctx, req)
	}
	return &chat.CodeResult{}, nil
}
func (m *ChatServiceMock) ClearMessages(ctx context.Context, userID int64) error {
	if m.ClearMessagesFn != nil {
		return m.ClearMessagesFn(ctx, userID)
	}
	return nil
}

// MusicServiceMock is a lightweight mock for MusicService
type MusicServiceMock struct {
	ListProjectsFn func(ctx context.Context, userID int64) ([]*music.Project, error)
	GetProjectFn   func(ctx context.Context, id int64) (*music.Project, error)
	GenerateFn     func(ctx context.Context, userID int64, req *music.CreateProjectRequest) (*music.Project, error)
}

func (m *MusicServiceMock) ListProjects(ctx context.Context, userID int64) ([]*music.Project, error) {
	if m.ListProjectsFn != nil {
		return m.ListProjectsFn(ctx, userID)
	}
	return []*music.Project{}, nil
}
func (m *MusicServiceMock) GetProject(ctx context.Context, id int64) (*music.Project, error) {
	if m.GetProjectFn != nil {
		return m.GetProjectFn(ctx, id)
	}
	return nil, music.ErrProjectNotFound
}
func (m *MusicServiceMock) Generate(ctx context.Context, userID int64, req *music.CreateProjectRequest) (*music.Project, error) {
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, userID, req)
	}
	return &music.Project{UserID: userID, Title: req.Title, Status: music.StatusDraft}, nil
}
func (m *MusicServiceMock) Shutdown(ctx context.Context) error { return nil }

// QuantumServiceMock is a lightweight mock for QuantumService
type QuantumServiceMock struct {
	ListProjectsFn  func(ctx context.Context, userID int64) ([]*quantum.Project, error)
	CreateProjectFn func(ctx context.Context, userID int64, req *quantum.CreateProjectRequest) (*quantum.Project, error)
	ListMessagesFn  func(ctx context.Context, userID int64) ([]*quantum.SecureMessage, error)
	CreateMessageFn func(ctx context.Context, userID int64, req *quantum.CreateMessageRequest) (*quantum.SecureMessage, error)
	ListFilesFn     func(ctx context.Context, userID int64) ([]*quantum.SecureFile, error)
	UploadFileFn    func(ctx context.Context, userID int64, upload *quantum.Upload, body io.Reader) (*quantum.SecureFile, error)
}

func (m *QuantumServiceMock) ListProjects(ctx context.Context, userID int64) ([]*quantum.Project, error) {
	if m.ListProjectsFn != nil {
		return m.ListProjectsFn(ctx, userID)
	}
	return []*quantum.Project{}, nil
}
func (m *QuantumServiceMock) CreateProject(ctx context.Context, userID int64, req *quantum.CreateProjectRequest) (*quantum.Project, error) {
	if m.CreateProjectFn != nil {
		return m.CreateProjectFn(ctx, userID, req)
	}
	return &quantum.Project{UserID: userID, Name: req.Name}, nil
}
func (m *QuantumServiceMock) ListMessages(ctx context.Context, userID int64) ([]*quantum.SecureMessage, error) {
	if m.ListMessagesFn != nil {
		return m.ListMessagesFn(ctx, userID)
	}
	return []*quantum.SecureMessage{}, nil
}
func (m *QuantumServiceMock) CreateMessage(ctx context.Context, userID int64, req *quantum.CreateMessageRequest) (*quantum.SecureMessage, error) {
	if m.CreateMessageFn != nil {
		return m.CreateMessageFn(ctx, userID, req)
	}
	return &quantum.SecureMessage{UserID: userID, Content: req.Content, Author: req.Author, Encrypted: true}, nil
}
func (m *QuantumServiceMock) ListFiles(ctx context.Context, userID int64) ([]*quantum.SecureFile, error) {
	if m.ListFilesFn != nil {
		return m.ListFilesFn(ctx, userID)
	}
	return []*quantum.SecureFile{}, nil
}
func (m *QuantumServiceMock) UploadFile(ctx context.Context, userID int64, upload *quantum.Upload, body io.Reader) (*quantum.SecureFile, error) {
	if m.UploadFileFn != nil {
		return m.UploadFileFn(ctx, userID, upload, body)
	}
	return &quantum.SecureFile{UserID: userID, OriginalName: upload.OriginalName, Size: upload.Size, Watermarked: upload.Watermark}, nil
}

// UserServiceMock is a lightweight mock for UserService
type UserServiceMock struct {
	EnsureDefaultUserFn func(ctx context.Context, req *user.CreateUserRequest) (*user.User, error)
	GetUserFn           func(ctx context.Context, id int64) (*user.User, error)
}

func (m *UserServiceMock) EnsureDefaultUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	if m.EnsureDefaultUserFn != nil {
		return m.EnsureDefaultUserFn(ctx, req)
	}
	return &user.User{ID: 1, Username: req.Username}, nil
}
func (m *UserServiceMock) GetUser(ctx context.Context, id int64) (*user.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

// SystemServiceMock returns a fixed status document.
type SystemServiceMock struct {
	StatusValue *system.Status
}

func (m *SystemServiceMock) Status(ctx context.Context) *system.Status {
	if m.StatusValue != nil {
		return m.StatusValue
	}
	return &system.Status{APIs: map[string]string{}}
}

// HealthCheckerMock reports the configured error. Optional marks it as a
// dependency whose failure only degrades the service.
type HealthCheckerMock struct {
	NameValue     string
	Err           error
	OptionalValue bool
}

func (m *HealthCheckerMock) Name() string                    { return m.NameValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error { return m.Err }
func (m *HealthCheckerMock) Optional() bool                  { return m.OptionalValue }

// RateLimitRepositoryMock counts per key in memory unless IncrementWindowFn is set.
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, client string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)

	mu     sync.Mutex
	counts map[string]int
	TTLs   []time.Duration
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, client string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, client, window, keyPrefix, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	key := keyPrefix + ":" + client
	m.counts[key]++
	m.TTLs = append(m.TTLs, ttl)
	return m.counts[key], time.Now().Truncate(window), nil
}

// RateLimiterServiceMock is a lightweight mock for RateLimiterService
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, client string) (bool, int, int, time.Time, error)
	Clients []string
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, client string) (bool, int, int, time.Time, error) {
	m.Clients = append(m.Clients, client)
	if m.AllowFn != nil {
		return m.AllowFn(ctx, client)
	}
	return true, 1, 1, time.Now(), nil
}

var (
	_ ports.Cache           = (*CacheMock)(nil)
	_ ports.ChatRepository  = (*ChatRepositoryMock)(nil)
	_ ports.MusicRepository = (*MusicRepositoryMock)(nil)
	_ ports.UserRepository  = (*UserRepositoryMock)(nil)
	_ ports.LLMProvider     = (*LLMProviderMock)(nil)
	_ ports.FileStore       = (*FileStoreMock)(nil)
	_ ports.ChatService     = (*ChatServiceMock)(nil)
	_ ports.MusicService    = (*MusicServiceMock)(nil)
	_ ports.QuantumService  = (*QuantumServiceMock)(nil)
	_ ports.UserService     = (*UserServiceMock)(nil)
	_ ports.SystemService   = (*SystemServiceMock)(nil)
	_ ports.HealthChecker   = (*HealthCheckerMock)(nil)

	_ ports.RateLimitRepository = (*RateLimitRepositoryMock)(nil)
	_ ports.RateLimiterService  = (*RateLimiterServiceMock)(nil)
)
