package repositories

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/quantum-studio/internal/core/domain/quantum"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/db"
)

// QuantumProjectRepository stores quantum suite projects in Postgres.
type QuantumProjectRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewQuantumProjectRepository(database *db.Database, logger *logrus.Logger) ports.QuantumProjectRepository {
	return &QuantumProjectRepository{db: database, logger: logger}
}

func (r *QuantumProjectRepository) Create(ctx context.Context, p *quantum.Project) error {
	query := `
		INSERT INTO quantum_projects (user_id, name, description, priority, progress, total_tasks, completed_tasks, due_date, members)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	if p.Members == nil {
		p.Members = quantum.Members{}
	}
	err := r.db.DB.QueryRowxContext(ctx, query,
		p.UserID, p.Name, p.Description, p.Priority, p.Progress, p.TotalTasks, p.CompletedTasks, p.DueDate, p.Members,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": p.UserID, "name": p.Name}).WithError(err).Error("db: failed to create quantum project")
		}
		return fmt.Errorf("failed to create quantum project: %w", err)
	}
	return nil
}

func (r *QuantumProjectRepository) ListByUser(ctx context.Context, userID int64) ([]*quantum.Project, error) {
	query := `
		SELECT id, user_id, name, description, priority, progress, total_tasks, completed_tasks, due_date, members, created_at
		FROM quantum_projects
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	projects := []*quantum.Project{}
	if err := r.db.DB.SelectContext(ctx, &projects, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list quantum projects: %w", err)
	}
	return projects, nil
}

// SecureMessageRepository stores secure messages in Postgres.
type SecureMessageRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewSecureMessageRepository(database *db.Database, logger *logrus.Logger) ports.SecureMessageRepository {
	return &SecureMessageRepository{db: database, logger: logger}
}

func (r *SecureMessageRepository) Create(ctx context.Context, m *quantum.SecureMessage) error {
	query := `
		INSERT INTO secure_messages (user_id, content, author, encrypted)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	if err := r.db.DB.QueryRowxContext(ctx, query, m.UserID, m.Content, m.Author, m.Encrypted).Scan(&m.ID, &m.CreatedAt); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": m.UserID}).WithError(err).Error("db: failed to create secure message")
		}
		return fmt.Errorf("failed to create secure message: %w", err)
	}
	return nil
}

// ListByUser returns messages oldest first.
func (r *SecureMessageRepository) ListByUser(ctx context.Context, userID int64) ([]*quantum.SecureMessage, error) {
	query := `
		SELECT id, user_id, content, author, encrypted, created_at
		FROM secure_messages
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`

	msgs := []*quantum.SecureMessage{}
	if err := r.db.DB.SelectContext(ctx, &msgs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list secure messages: %w", err)
	}
	return msgs, nil
}

// SecureFileRepository stores uploaded file metadata in Postgres.
type SecureFileRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewSecureFileRepository(database *db.Database, logger *logrus.Logger) ports.SecureFileRepository {
	return &SecureFileRepository{db: database, logger: logger}
}

func (r *SecureFileRepository) Create(ctx context.Context, f *quantum.SecureFile) error {
	query := `
		INSERT INTO secure_files (user_id, filename, original_name, size, mime_type, encrypted, watermarked, upload_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.DB.QueryRowxContext(ctx, query,
		f.UserID, f.Filename, f.OriginalName, f.Size, f.MimeType, f.Encrypted, f.Watermarked, f.UploadPath,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": f.UserID, "filename": f.Filename}).WithError(err).Error("db: failed to create secure file")
		}
		return fmt.Errorf("failed to create secure file: %w", err)
	}
	return nil
}

func (r *SecureFileRepository) ListByUser(ctx context.Context, userID int64) ([]*quantum.SecureFile, error) {
	query := `
		SELECT id, user_id, filename, original_name, size, mime_type, encrypted, watermarked, upload_path, created_at
		FROM secure_files
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	files := []*quantum.SecureFile{}
	if err := r.db.DB.SelectContext(ctx, &files, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list secure files: %w", err)
	}
	return files, nil
}
