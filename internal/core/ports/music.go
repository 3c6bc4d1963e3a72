package ports

import (
	"context"

	"github.com/avatarctic/quantum-studio/internal/core/domain/music"
)

type MusicRepository interface {
	Create(ctx context.Context, p *music.Project) error
	GetByID(ctx context.Context, id int64) (*music.Project, error)
	ListByUser(ctx context.Context, userID int64) ([]*music.Project, error)
	// Update applies u and returns the updated project, or music.ErrProjectNotFound.
	Update(ctx context.Context, id int64, u music.Update) (*music.Project, error)
}

type MusicService interface {
	ListProjects(ctx context.Context, userID int64) ([]*music.Project, error)
	GetProject(ctx context.Context, id int64) (*music.Project, error)
	Generate(ctx context.Context, userID int64, req *music.CreateProjectRequest) (*music.Project, error)
	// Shutdown stops pending generation jobs and waits for them to exit.
	Shutdown(ctx context.Context) error
}
