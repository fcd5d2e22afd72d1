package festival

import (
	"context"
	"strings"

	"cloud.google.com/go/civil"
)

// Pagination defaults and bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// ListOptions contains options for listing festivals.
type ListOptions struct {
	Skip  int
	Limit int
}

// Repository defines the interface for festival persistence.
// Every read returns active festivals only, ordered by ID.
type Repository interface {
	// Get retrieves an active festival by ID.
	Get(ctx context.Context, id int64) (*Festival, error)

	// List retrieves active festivals page by page.
	List(ctx context.Context, opts ListOptions) ([]*Festival, error)

	// ListOnDate retrieves festivals where start <= date <= end.
	ListOnDate(ctx context.Context, date civil.Date) ([]*Festival, error)

	// ListInRange retrieves festivals overlapping [start, end].
	ListInRange(ctx context.Context, start, end civil.Date) ([]*Festival, error)

	// ListByLocation retrieves festivals whose location contains text,
	// ignoring case.
	ListByLocation(ctx context.Context, text string) ([]*Festival, error)

	// Search retrieves festivals matching every set filter field.
	Search(ctx context.Context, filter SearchFilter) ([]*Festival, error)

	// Create stores a new festival and sets its ID.
	Create(ctx context.Context, f *Festival) error

	// Update overwrites an active festival.
	Update(ctx context.Context, f *Festival) error

	// SoftDelete marks an active festival inactive.
	SoftDelete(ctx context.Context, id int64) error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
