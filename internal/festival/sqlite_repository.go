package festival

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS festivals (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	name                  TEXT NOT NULL,
	location              TEXT NOT NULL,
	start_date            TEXT NOT NULL,
	end_date              TEXT NOT NULL,
	type                  TEXT,
	description           TEXT,
	cultural_significance TEXT,
	is_active             INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_festivals_start_date ON festivals(start_date);
CREATE INDEX IF NOT EXISTS idx_festivals_location ON festivals(location);
`

// SQLiteRepository is a single-file implementation of Repository for local
// development. Dates are stored as YYYY-MM-DD text so they compare in order.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLiteRepository opens (creating if needed) the database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating festivals table: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Get retrieves an active festival by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*Festival, error) {
	query := `SELECT ` + festivalColumns + ` FROM festivals WHERE id = ? AND is_active = 1`

	f, err := scanSQLiteFestival(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFestivalNotFound
		}
		return nil, err
	}
	return f, nil
}

// List retrieves active festivals page by page.
func (r *SQLiteRepository) List(ctx context.Context, opts ListOptions) ([]*Festival, error) {
	query := `SELECT ` + festivalColumns + ` FROM festivals
		WHERE is_active = 1
		ORDER BY id
		LIMIT ? OFFSET ?`

	return r.query(ctx, query, normalizeLimit(opts.Limit), max(opts.Skip, 0))
}

// ListOnDate retrieves festivals running on date.
func (r *SQLiteRepository) ListOnDate(ctx context.Context, date civil.Date) ([]*Festival, error) {
	return r.ListInRange(ctx, date, date)
}

// ListInRange retrieves festivals overlapping [start, end].
func (r *SQLiteRepository) ListInRange(ctx context.Context, start, end civil.Date) ([]*Festival, error) {
	query := `SELECT ` + festivalColumns + ` FROM festivals
		WHERE is_active = 1 AND start_date <= ? AND end_date >= ?
		ORDER BY id`

	return r.query(ctx, query, end.String(), start.String())
}

// ListByLocation retrieves festivals whose location contains text.
func (r *SQLiteRepository) ListByLocation(ctx context.Context, text string) ([]*Festival, error) {
	return r.Search(ctx, SearchFilter{Location: text})
}

// Search retrieves festivals matching filter.
func (r *SQLiteRepository) Search(ctx context.Context, filter SearchFilter) ([]*Festival, error) {
	conditions := []string{"is_active = 1"}
	var args []any

	if filter.Location != "" {
		conditions = append(conditions, `lower(location) LIKE '%' || lower(?) || '%' ESCAPE '\'`)
		args = append(args, escapeLike(filter.Location))
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.From != nil {
		conditions = append(conditions, "end_date >= ?")
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		conditions = append(conditions, "start_date <= ?")
		args = append(args, filter.To.String())
	}

	query := `SELECT ` + festivalColumns + ` FROM festivals
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY id`

	return r.query(ctx, query, args...)
}

// Create stores a new festival and sets its ID.
func (r *SQLiteRepository) Create(ctx context.Context, f *Festival) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO festivals (
			name, location, start_date, end_date, type,
			description, cultural_significance, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Name,
		f.Location,
		f.StartDate.String(),
		f.EndDate.String(),
		nullableType(f.Type),
		f.Description,
		f.CulturalSignificance,
		f.IsActive,
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = id
	return nil
}

// Update overwrites an active festival.
func (r *SQLiteRepository) Update(ctx context.Context, f *Festival) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE festivals SET
			name = ?,
			location = ?,
			start_date = ?,
			end_date = ?,
			type = ?,
			description = ?,
			cultural_significance = ?,
			is_active = ?
		WHERE id = ? AND is_active = 1`,
		f.Name,
		f.Location,
		f.StartDate.String(),
		f.EndDate.String(),
		nullableType(f.Type),
		f.Description,
		f.CulturalSignificance,
		f.IsActive,
		f.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SoftDelete marks an active festival inactive.
func (r *SQLiteRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE festivals SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*Festival, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	festivals := make([]*Festival, 0)
	for rows.Next() {
		f, err := scanSQLiteFestival(rows)
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

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteFestival(row sqlScanner) (*Festival, error) {
	var (
		f                                Festival
		start, end                       string
		festivalType, description, notes sql.NullString
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

	if f.StartDate, err = civil.ParseDate(start); err != nil {
		return nil, fmt.Errorf("festival %d start_date: %w", f.ID, err)
	}
	if f.EndDate, err = civil.ParseDate(end); err != nil {
		return nil, fmt.Errorf("festival %d end_date: %w", f.ID, err)
	}
	f.Type = Type(festivalType.String)
	f.Description = description.String
	f.CulturalSignificance = notes.String
	return &f, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFestivalNotFound
	}
	return nil
}

var _ Repository = (*SQLiteRepository)(nil)
