package festival

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"cloud.google.com/go/civil"
)

// InMemoryRepository is an in-memory implementation of Repository.
// It backs tests and local runs without a database.
type InMemoryRepository struct {
	mu        sync.RWMutex
	festivals map[int64]*Festival
	nextID    int64
}

// NewInMemoryRepository creates a new in-memory festival repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		festivals: make(map[int64]*Festival),
		nextID:    1,
	}
}

// Get retrieves an active festival by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Festival, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.festivals[id]
	if !ok || !f.IsActive {
		return nil, ErrFestivalNotFound
	}

	cpy := *f
	return &cpy, nil
}

// List retrieves active festivals page by page.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) ([]*Festival, error) {
	all := r.filter(func(*Festival) bool { return true })

	skip := max(opts.Skip, 0)
	if skip >= len(all) {
		return []*Festival{}, nil
	}
	end := min(skip+normalizeLimit(opts.Limit), len(all))
	return all[skip:end], nil
}

// ListOnDate retrieves festivals running on date.
func (r *InMemoryRepository) ListOnDate(_ context.Context, date civil.Date) ([]*Festival, error) {
	return r.filter(func(f *Festival) bool { return f.OccursOn(date) }), nil
}

// ListInRange retrieves festivals overlapping [start, end].
func (r *InMemoryRepository) ListInRange(_ context.Context, start, end civil.Date) ([]*Festival, error) {
	return r.filter(func(f *Festival) bool { return f.Overlaps(start, end) }), nil
}

// ListByLocation retrieves festivals whose location contains text.
func (r *InMemoryRepository) ListByLocation(_ context.Context, text string) ([]*Festival, error) {
	return r.filter(func(f *Festival) bool { return containsFold(f.Location, text) }), nil
}

// Search retrieves festivals matching filter.
func (r *InMemoryRepository) Search(_ context.Context, filter SearchFilter) ([]*Festival, error) {
	return r.filter(filter.Matches), nil
}

// Create stores a new festival and assigns the next ID.
func (r *InMemoryRepository) Create(_ context.Context, f *Festival) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f.ID = r.nextID
	r.nextID++

	cpy := *f
	r.festivals[f.ID] = &cpy
	return nil
}

// Update overwrites an active festival.
func (r *InMemoryRepository) Update(_ context.Context, f *Festival) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.festivals[f.ID]
	if !ok || !existing.IsActive {
		return ErrFestivalNotFound
	}

	cpy := *f
	r.festivals[f.ID] = &cpy
	return nil
}

// SoftDelete marks an active festival inactive.
func (r *InMemoryRepository) SoftDelete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.festivals[id]
	if !ok || !f.IsActive {
		return ErrFestivalNotFound
	}

	f.IsActive = false
	return nil
}

// filter returns copies of active festivals accepted by keep, ordered by ID.
func (r *InMemoryRepository) filter(keep func(*Festival) bool) []*Festival {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Festival, 0)
	for _, f := range r.festivals {
		if f.IsActive && keep(f) {
			cpy := *f
			out = append(out, &cpy)
		}
	}

	slices.SortFunc(out, func(a, b *Festival) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

var _ Repository = (*InMemoryRepository)(nil)
