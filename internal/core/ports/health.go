package ports

import "context"

// HealthChecker abstracts a dependency health probe.
// Implementations should return error if unhealthy.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// OptionalDependency is implemented by checkers whose failure only degrades
// the service instead of taking it out of rotation.
type OptionalDependency interface {
	Optional() bool
}
