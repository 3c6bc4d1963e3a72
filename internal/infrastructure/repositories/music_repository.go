package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/quantum-studio/internal/core/domain/music"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/db"
)

const musicColumns = `id, user_id, title, lyrics, genre, mood, voice_style, status, audio_url, duration, created_at`

// MusicRepository stores music projects in Postgres.
type MusicRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewMusicRepository(database *db.Database, logger *logrus.Logger) ports.MusicRepository {
	return &MusicRepository{db: database, logger: logger}
}

func (r *MusicRepository) Create(ctx context.Context, p *music.Project) error {
	query := `
		INSERT INTO music_projects (user_id, title, lyrics, genre, mood, voice_style, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	if p.Status == "" {
		p.Status = music.StatusDraft
	}
	err := r.db.DB.QueryRowxContext(ctx, query,
		p.UserID, p.Title, p.Lyrics, p.Genre, p.Mood, p.VoiceStyle, p.Status).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": p.UserID, "title": p.Title}).WithError(err).Error("db: failed to create music project")
		}
		return fmt.Errorf("failed to create music project: %w", err)
	}
	return nil
}

func (r *MusicRepository) GetByID(ctx context.Context, id int64) (*music.Project, error) {
	var p music.Project
	query := `SELECT ` + musicColumns + ` FROM music_projects WHERE id = $1`
	if err := r.db.DB.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, music.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get music project: %w", err)
	}
	return &p, nil
}

// ListByUser returns projects newest first.
func (r *MusicRepository) ListByUser(ctx context.Context, userID int64) ([]*music.Project, error) {
	query := `SELECT ` + musicColumns + ` FROM music_projects WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	projects := []*music.Project{}
	if err := r.db.DB.SelectContext(ctx, &projects, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list music projects: %w", err)
	}
	return projects, nil
}

func (r *MusicRepository) Update(ctx context.Context, id int64, u music.Update) (*music.Project, error) {
	query := `
		UPDATE music_projects
		SET status = COALESCE($2, status),
			audio_url = COALESCE($3, audio_url),
			duration = COALESCE($4, duration)
		WHERE id = $1
		RETURNING ` + musicColumns

	var p music.Project
	if err := r.db.DB.GetContext(ctx, &p, query, id, u.Status, u.AudioURL, u.Duration); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, music.ErrProjectNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"project_id": id}).WithError(err).Error("db: failed to update music project")
		}
		return nil, fmt.Errorf("failed to update music project: %w", err)
	}
	return &p, nil
}
