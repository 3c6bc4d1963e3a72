package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
	"github.com/avatarctic/quantum-studio/internal/core/domain/music"
	"github.com/avatarctic/quantum-studio/internal/core/domain/quantum"
	"github.com/avatarctic/quantum-studio/internal/core/domain/user"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

// MemoryStore is the source of truth when no database is configured. All entity
// kinds draw IDs from one sequence. Reads return copies so callers cannot mutate
// stored rows.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	now    func() time.Time

	users           map[int64]*user.User
	chatMessages    map[int64]*chat.ChatMessage
	musicProjects   map[int64]*music.Project
	quantumProjects map[int64]*quantum.Project
	secureMessages  map[int64]*quantum.SecureMessage
	secureFiles     map[int64]*quantum.SecureFile
}

// NewMemoryStore creates an empty store whose first ID is 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:          1,
		now:             time.Now,
		users:           map[int64]*user.User{},
		chatMessages:    map[int64]*chat.ChatMessage{},
		musicProjects:   map[int64]*music.Project{},
		quantumProjects: map[int64]*quantum.Project{},
		secureMessages:  map[int64]*quantum.SecureMessage{},
		secureFiles:     map[int64]*quantum.SecureFile{},
	}
}

// assign hands out the next ID and creation time. Caller holds mu.
func (s *MemoryStore) assign() (int64, time.Time) {
	id := s.nextID
	s.nextID++
	return id, s.now()
}

func (s *MemoryStore) Users() ports.UserRepository                     { return memUsers{s} }
func (s *MemoryStore) Chat() ports.ChatRepository                      { return memChat{s} }
func (s *MemoryStore) Music() ports.MusicRepository                    { return memMusic{s} }
func (s *MemoryStore) QuantumProjects() ports.QuantumProjectRepository { return memQuantumProjects{s} }
func (s *MemoryStore) SecureMessages() ports.SecureMessageRepository   { return memSecureMessages{s} }
func (s *MemoryStore) SecureFiles() ports.SecureFileRepository         { return memSecureFiles{s} }

// sortByCreated orders rows by creation time then ID, ascending or descending.
func sortByCreated[T any](rows []*T, key func(*T) (time.Time, int64), desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, ii := key(rows[i])
		tj, ij := key(rows[j])
		if !ti.Equal(tj) {
			if desc {
				return ti.After(tj)
			}
			return ti.Before(tj)
		}
		if desc {
			return ii > ij
		}
		return ii < ij
	})
}

type memUsers struct{ s *MemoryStore }

func (r memUsers) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID, u.CreatedAt = r.s.assign()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

type memChat struct{ s *MemoryStore }

func (r memChat) Create(_ context.Context, msg *chat.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg.ID, msg.CreatedAt = r.s.assign()
	cp := *msg
	r.s.chatMessages[msg.ID] = &cp
	return nil
}

func (r memChat) ListByUser(_ context.Context, userID int64) ([]*chat.ChatMessage, error) {
	r.s.mu.RLock()
	out := []*chat.ChatMessage{}
	for _, m := range r.s.chatMessages {
		if m.UserID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	r.s.mu.RUnlock()
	sortByCreated(out, func(m *chat.ChatMessage) (time.Time, int64) { return m.CreatedAt, m.ID }, false)
	return out, nil
}

func (r memChat) ClearByUser(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.chatMessages {
		if m.UserID == userID {
			delete(r.s.chatMessages, id)
		}
	}
	return nil
}

type memMusic struct{ s *MemoryStore }

func copyProject(p *music.Project) *music.Project {
	cp := *p
	if p.Duration != nil {
		d := *p.Duration
		cp.Duration = &d
	}
	if p.AudioURL != nil {
		u := *p.AudioURL
		cp.AudioURL = &u
	}
	return &cp
}

func (r memMusic) Create(_ context.Context, p *music.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID, p.CreatedAt = r.s.assign()
	p.Status = music.StatusDraft
	p.AudioURL = nil
	p.Duration = nil
	r.s.musicProjects[p.ID] = copyProject(p)
	return nil
}

func (r memMusic) GetByID(_ context.Context, id int64) (*music.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.musicProjects[id]
	if !ok {
		return nil, music.ErrProjectNotFound
	}
	return copyProject(p), nil
}

func (r memMusic) ListByUser(_ context.Context, userID int64) ([]*music.Project, error) {
	r.s.mu.RLock()
	out := []*music.Project{}
	for _, p := range r.s.musicProjects {
		if p.UserID == userID {
			out = append(out, copyProject(p))
		}
	}
	r.s.mu.RUnlock()
	sortByCreated(out, func(p *music.Project) (time.Time, int64) { return p.CreatedAt, p.ID }, true)
	return out, nil
}

func (r memMusic) Update(_ context.Context, id int64, u music.Update) (*music.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.musicProjects[id]
	if !ok {
		return nil, music.ErrProjectNotFound
	}
	updated := copyProject(p)
	u.Apply(updated)
	r.s.musicProjects[id] = updated
	return copyProject(updated), nil
}

type memQuantumProjects struct{ s *MemoryStore }

func (r memQuantumProjects) Create(_ context.Context, p *quantum.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID, p.CreatedAt = r.s.assign()
	if p.Members == nil {
		p.Members = quantum.Members{}
	}
	cp := *p
	cp.Members = append(quantum.Members{}, p.Members...)
	r.s.quantumProjects[p.ID] = &cp
	return nil
}

func (r memQuantumProjects) ListByUser(_ context.Context, userID int64) ([]*quantum.Project, error) {
	r.s.mu.RLock()
	out := []*quantum.Project{}
	for _, p := range r.s.quantumProjects {
		if p.UserID == userID {
			cp := *p
			cp.Members = append(quantum.Members{}, p.Members...)
			out = append(out, &cp)
		}
	}
	r.s.mu.RUnlock()
	sortByCreated(out, func(p *quantum.Project) (time.Time, int64) { return p.CreatedAt, p.ID }, true)
	return out, nil
}

type memSecureMessages struct{ s *MemoryStore }

func (r memSecureMessages) Create(_ context.Context, m *quantum.SecureMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID, m.CreatedAt = r.s.assign()
	cp := *m
	r.s.secureMessages[m.ID] = &cp
	return nil
}

func (r memSecureMessages) ListByUser(_ context.Context, userID int64) ([]*quantum.SecureMessage, error) {
	r.s.mu.RLock()
	out := []*quantum.SecureMessage{}
	for _, m := range r.s.secureMessages {
		if m.UserID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	r.s.mu.RUnlock()
	sortByCreated(out, func(m *quantum.SecureMessage) (time.Time, int64) { return m.CreatedAt, m.ID }, false)
	return out, nil
}

type memSecureFiles struct{ s *MemoryStore }

func (r memSecureFiles) Create(_ context.Context, f *quantum.SecureFile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f.ID, f.CreatedAt = r.s.assign()
	cp := *f
	r.s.secureFiles[f.ID] = &cp
	return nil
}

func (r memSecureFiles) ListByUser(_ context.Context, userID int64) ([]*quantum.SecureFile, error) {
	r.s.mu.RLock()
	out := []*quantum.SecureFile{}
	for _, f := range r.s.secureFiles {
		if f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	r.s.mu.RUnlock()
	sortByCreated(out, func(f *quantum.SecureFile) (time.Time, int64) { return f.CreatedAt, f.ID }, true)
	return out, nil
}
