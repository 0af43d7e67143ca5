package ports

import (
	"context"

	"github.com/arborhq/arbor/pkg/domain"
)

// DomainSource defines how a built domain is obtained. Implementations own
// parsing and validation; a returned domain is ready to plan against.
type DomainSource interface {
	// Load reads the current domain definition and builds it.
	Load(ctx context.Context) (*domain.Domain, error)
}

// Watchable is implemented by sources that can notify about backend changes.
// It backs hot reload in watch mode and the serve command.
type Watchable interface {
	// Watch returns a channel signaled when the underlying definition
	// changes. The channel closes when ctx is done. Consumers reload via
	// Load; the signal carries no event details.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
