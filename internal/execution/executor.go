package execution

import (
	"context"

	"yamltests/internal/domain"
)

// Executor runs a single test
type Executor interface {
	Run(ctx context.Context, test domain.Test) (domain.RunResult, error)
}
