package ports

import (
	"context"

	"github.com/avatarctic/quantum-studio/internal/core/domain/system"
)

type SystemService interface {
	Status(ctx context.Context) *system.Status
}
