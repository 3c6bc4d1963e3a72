package services

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/quantum-studio/internal/core/domain/quantum"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

type QuantumService struct {
	projects ports.QuantumProjectRepository
	messages ports.SecureMessageRepository
	files    ports.SecureFileRepository
	store    ports.FileStore
	logger   *logrus.Logger
}

func NewQuantumService(projects ports.QuantumProjectRepository, messages ports.SecureMessageRepository, files ports.SecureFileRepository, store ports.FileStore, logger *logrus.Logger) ports.QuantumService {
	return &QuantumService{projects: projects, messages: messages, files: files, store: store, logger: logger}
}

func (s *QuantumService) ListProjects(ctx context.Context, userID int64) ([]*quantum.Project, error) {
	return s.projects.ListByUser(ctx, userID)
}

// CreateProject starts every project at zero progress.
func (s *QuantumService) CreateProject(ctx context.Context, userID int64, req *quantum.CreateProjectRequest) (*quantum.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	members := req.Members
	if members == nil {
		members = quantum.Members{}
	}
	p := &quantum.Project{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		TotalTasks:  req.TotalTasks,
		DueDate:     req.DueDate,
		Members:     members,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create quantum project: %w", err)
	}
	return p, nil
}

func (s *QuantumService) ListMessages(ctx context.Context, userID int64) ([]*quantum.SecureMessage, error) {
	return s.messages.ListByUser(ctx, userID)
}

func (s *QuantumService) CreateMessage(ctx context.Context, userID int64, req *quantum.CreateMessageRequest) (*quantum.SecureMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m := &quantum.SecureMessage{UserID: userID, Content: req.Content, Author: req.Author, Encrypted: true}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create secure message: %w", err)
	}
	return m, nil
}

func (s *QuantumService) ListFiles(ctx context.Context, userID int64) ([]*quantum.SecureFile, error) {
	return s.files.ListByUser(ctx, userID)
}

// UploadFile stores the body under a random name, then records its metadata.
func (s *QuantumService) UploadFile(ctx context.Context, userID int64, upload *quantum.Upload, body io.Reader) (*quantum.SecureFile, error) {
	if upload == nil || body == nil {
		return nil, quantum.ErrNoFile
	}
	name := uuid.NewString()
	location, err := s.store.Save(ctx, name, upload.MimeType, body, upload.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	f := &quantum.SecureFile{
		UserID:       userID,
		Filename:     name,
		OriginalName: upload.OriginalName,
		Size:         upload.Size,
		MimeType:     upload.MimeType,
		Encrypted:    true,
		Watermarked:  upload.Watermark,
		UploadPath:   location,
	}
	if err := s.files.Create(ctx, f); err != nil {
		// the body is unreachable without its record
		if delErr := s.store.Delete(context.WithoutCancel(ctx), name); delErr != nil && s.logger != nil {
			s.logger.WithError(delErr).WithFields(logrus.Fields{"file": name, "location": location}).Error("quantum: failed to remove orphaned upload")
		}
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": userID, "file": name, "size": upload.Size}).Info("quantum: file uploaded")
	}
	return f, nil
}
