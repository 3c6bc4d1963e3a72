package ports

import (
	"context"
	"io"

	"github.com/avatarctic/quantum-studio/internal/core/domain/quantum"
)

type QuantumProjectRepository interface {
	Create(ctx context.Context, p *quantum.Project) error
	ListByUser(ctx context.Context, userID int64) ([]*quantum.Project, error)
}

type SecureMessageRepository interface {
	Create(ctx context.Context, m *quantum.SecureMessage) error
	ListByUser(ctx context.Context, userID int64) ([]*quantum.SecureMessage, error)
}

type SecureFileRepository interface {
	Create(ctx context.Context, f *quantum.SecureFile) error
	ListByUser(ctx context.Context, userID int64) ([]*quantum.SecureFile, error)
}

type QuantumService interface {
	ListProjects(ctx context.Context, userID int64) ([]*quantum.Project, error)
	CreateProject(ctx context.Context, userID int64, req *quantum.CreateProjectRequest) (*quantum.Project, error)
	ListMessages(ctx context.Context, userID int64) ([]*quantum.SecureMessage, error)
	CreateMessage(ctx context.Context, userID int64, req *quantum.CreateMessageRequest) (*quantum.SecureMessage, error)
	ListFiles(ctx context.Context, userID int64) ([]*quantum.SecureFile, error)
	UploadFile(ctx context.Context, userID int64, upload *quantum.Upload, body io.Reader) (*quantum.SecureFile, error)
}

// FileStore persists uploaded file bodies and returns where they were written.
type FileStore interface {
	Save(ctx context.Context, name, contentType string, body io.Reader, size int64) (location string, err error)
	// Delete removes the body stored under name. Removing a missing body is not an error.
	Delete(ctx context.Context, name string) error
}
