package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/quantum-studio/internal/core/domain/music"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

// MusicTimings controls the simulated generation pipeline.
type MusicTimings struct {
	ProcessingDelay   time.Duration // draft -> processing
	CompleteDelay     time.Duration // processing -> complete
	GeneratedDuration int           // seconds reported for a finished track
}

type MusicService struct {
	repo    ports.MusicRepository
	timings MusicTimings
	logger  *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	// mu orders job registration against Shutdown.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewMusicService(repo ports.MusicRepository, timings MusicTimings, logger *logrus.Logger) ports.MusicService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MusicService{repo: repo, timings: timings, logger: logger, ctx: ctx, cancel: cancel}
}

func (s *MusicService) ListProjects(ctx context.Context, userID int64) ([]*music.Project, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *MusicService) GetProject(ctx context.Context, id int64) (*music.Project, error) {
	return s.repo.GetByID(ctx, id)
}

// Generate stores a draft project and starts its simulated rendering in the background.
// After Shutdown the draft is still stored but never advances.
func (s *MusicService) Generate(ctx context.Context, userID int64, req *music.CreateProjectRequest) (*music.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p := &music.Project{
		UserID:     userID,
		Title:      req.Title,
		Lyrics:     req.Lyrics,
		Genre:      req.Genre,
		Mood:       req.Mood,
		VoiceStyle: req.VoiceStyle,
		Status:     music.StatusDraft,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create music project: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return p, nil
	}
	s.wg.Add(1)
	go s.simulate(p.ID)
	return p, nil
}

func (s *MusicService) simulate(id int64) {
	defer s.wg.Done()

	if !s.sleep(s.timings.ProcessingDelay) {
		return
	}
	processing := music.StatusProcessing
	if !s.update(id, music.Update{Status: &processing}) {
		return
	}

	if !s.sleep(s.timings.CompleteDelay) {
		return
	}
	complete := music.StatusComplete
	duration := s.timings.GeneratedDuration
	audioURL := fmt.Sprintf("/api/music/audio/%d", id)
	s.update(id, music.Update{Status: &complete, Duration: &duration, AudioURL: &audioURL})
}

// sleep waits d or until shutdown; it reports whether the job should continue.
func (s *MusicService) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *MusicService) update(id int64, u music.Update) bool {
	p, err := s.repo.Update(s.ctx, id, u)
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("project_id", id).WithError(err).Error("music: failed to update project status")
		}
		return false
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"project_id": id, "status": p.Status}).Debug("music: project status changed")
	}
	return true
}

// Shutdown cancels pending jobs and waits for them, bounded by ctx.
func (s *MusicService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
