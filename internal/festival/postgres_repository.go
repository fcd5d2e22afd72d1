package festival

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const festivalColumns = `id, name, location, start_date, end_date, type,
	description, cultural_significance, is_active`

// PostgresRepository is a PostgreSQL implementation of Repository.
// EnsureSchema creates the table it reads from.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS festivals (
	id                    BIGSERIAL PRIMARY KEY,
	name                  TEXT NOT NULL,
	location              TEXT NOT NULL,
	start_date            DATE NOT NULL,
	end_date              DATE NOT NULL,
	type                  TEXT,
	description           TEXT,
	cultural_significance TEXT,
	is_active             BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_festivals_start_date ON festivals(start_date);
CREATE INDEX IF NOT EXISTS idx_festivals_location ON festivals(location);
`

// NewPostgresRepository creates a new PostgreSQL festival repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the festivals table and its indexes if missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("creating festivals table: %w", err)
	}
	return nil
}

// Get retrieves an active festival by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Festival, error) {
	query := `SELECT ` + festivalColumns + ` FROM festivals WHERE id = $1 AND is_active`

	f, err := scanFestival(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFestivalNotFound
		}
		return nil, err
	}
	return f, nil
}

// List retrieves active festivals page by page.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]*Festival, error) {
	query := `SELECT ` + festivalColumns + ` FROM festivals
		WHERE is_active
		ORDER BY id
		OFFSET $1 LIMIT $2`

	return r.query(ctx, query, max(opts.Skip, 0), normalizeLimit(opts.Limit))
}

// ListOnDate retrieves festivals running on date.
func (r *PostgresRepository) ListOnDate(ctx context.Context, date civil.Date) ([]*Festival, error) {
	return r.ListInRange(ctx, date, date)
}

// ListInRange retrieves festivals overlapping [start, end].
func (r *PostgresRepository) ListInRange(ctx context.Context, start, end civil.Date) ([]*Festival, error) {
	query := `SELECT ` + festivalColumns + ` FROM festivals
		WHERE is_active AND start_date <= $1 AND end_date >= $2
		ORDER BY id`

	return r.query(ctx, query, toPGDate(end), toPGDate(start))
}

// ListByLocation retrieves festivals whose location contains text.
func (r *PostgresRepository) ListByLocation(ctx context.Context, text string) ([]*Festival, error) {
	return r.Search(ctx, SearchFilter{Location: text})
}

// Search retrieves festivals matching filter.
func (r *PostgresRepository) Search(ctx context.Context, filter SearchFilter) ([]*Festival, error) {
	conditions := []string{"is_active"}
	var args []any

	add := func(clause string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Location != "" {
		add(`location ILIKE '%%' || $%d || '%%'`, escapeLike(filter.Location))
	}
	if filter.Type != "" {
		add(`type = $%d`, string(filter.Type))
	}
	if filter.From != nil {
		add(`end_date >= $%d`, toPGDate(*filter.From))
	}
	if filter.To != nil {
		add(`start_date <= $%d`, toPGDate(*filter.To))
	}

	query := `SELECT ` + festivalColumns + ` FROM festivals
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY id`

	return r.query(ctx, query, args...)
}

// Create stores a new festival and sets its ID.
func (r *PostgresRepository) Create(ctx context.Context, f *Festival) error {
	query := `
		INSERT INTO festivals (
			name, location, start_date, end_date, type,
			description, cultural_significance, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		f.Name,
		f.Location,
		toPGDate(f.StartDate),
		toPGDate(f.EndDate),
		nullableType(f.Type),
		f.Description,
		f.CulturalSignificance,
		f.IsActive,
	).Scan(&f.ID)
}

// Update overwrites an active festival.
func (r *PostgresRepository) Update(ctx context.Context, f *Festival) error {
	query := `
		UPDATE festivals SET
			name = $2,
			location = $3,
			start_date = $4,
			end_date = $5,
			type = $6,
			description = $7,
			cultural_significance = $8,
			is_active = $9
		WHERE id = $1 AND is_active
	`

	tag, err := r.pool.Exec(ctx, query,
		f.ID,
		f.Name,
		f.Location,
		toPGDate(f.StartDate),
		toPGDate(f.EndDate),
		nullableType(f.Type),
		f.Description,
		f.CulturalSignificance,
		f.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFestivalNotFound
	}
	return nil
}

// SoftDelete marks an active festival inactive.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE festivals SET is_active = false WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFestivalNotFound
	}
	return nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*Festival, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	festivals := make([]*Festival, 0)
	for rows.Next() {
		f, err := scanFestival(rows)
		if err != nil {
			return nil, err
		}
		festivals = append(festivals, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return festivals, nil
}

func scanFestival(row pgx.Row) (*Festival, error) {
	var (
		f                                Festival
		start, end                       time.Time
		festivalType, description, notes *string
	)

	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Location,
		&start,
		&end,
		&festivalType,
		&description,
		&notes,
		&f.IsActive,
	)
	if err != nil {
		return nil, err
	}

	f.StartDate = civil.DateOf(start)
	f.EndDate = civil.DateOf(end)
	if festivalType != nil {
		f.Type = Type(*festivalType)
	}
	if description != nil {
		f.Description = *description
	}
	if notes != nil {
		f.CulturalSignificance = *notes
	}
	return &f, nil
}

func toPGDate(d civil.Date) time.Time {
	return d.In(time.UTC)
}

func nullableType(t Type) *string {
	if t == "" {
		return nil
	}
	s := string(t)
	return &s
}

// escapeLike escapes LIKE wildcards so user text matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ Repository = (*PostgresRepository)(nil)
