package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

// Store is a SQLite-backed reference store holding the financial
// reference tables and finished session transcripts.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.ReferenceStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.finsight/data/reference.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".finsight", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "reference.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Announcement Dates ====================

// SaveAnnouncementDates replaces the stored announcement dates.
func (s *Store) SaveAnnouncementDates(ctx context.Context, dates []domain.AnnouncementDate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM announcement_dates"); err != nil {
		return fmt.Errorf("clearing announcement dates: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO announcement_dates (position, date, source)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, d := range dates {
		if _, err := stmt.ExecContext(ctx, i, d.Date, d.Source); err != nil {
			return fmt.Errorf("saving announcement date: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListAnnouncementDates returns stored dates sorted ascending.
func (s *Store) ListAnnouncementDates(ctx context.Context) ([]domain.AnnouncementDate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, source FROM announcement_dates ORDER BY date
	`)
	if err != nil {
		return nil, fmt.Errorf("querying announcement dates: %w", err)
	}
	defer rows.Close()

	var dates []domain.AnnouncementDate //nolint:prealloc // size unknown from query
	for rows.Next() {
		var d domain.AnnouncementDate
		if err := rows.Scan(&d.Date, &d.Source); err != nil {
			return nil, fmt.Errorf("scanning announcement date: %w", err)
		}
		dates = append(dates, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating announcement dates: %w", err)
	}

	return dates, nil
}

// ==================== Vehicle Sales ====================

// SaveVehicleSales replaces the stored vehicle sales table.
func (s *Store) SaveVehicleSales(ctx context.Context, sales []domain.VehicleSales) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM vehicle_sales"); err != nil {
		return fmt.Errorf("clearing vehicle sales: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vehicle_sales (year, vehicles_sold)
		VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range sales {
		if _, err := stmt.ExecContext(ctx, v.Year, v.VehiclesSold); err != nil {
			return fmt.Errorf("saving vehicle sales for %d: %w", v.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListVehicleSales returns stored sales sorted by year.
func (s *Store) ListVehicleSales(ctx context.Context) ([]domain.VehicleSales, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, vehicles_sold FROM vehicle_sales ORDER BY year
	`)
	if err != nil {
		return nil, fmt.Errorf("querying vehicle sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.VehicleSales //nolint:prealloc // size unknown from query
	for rows.Next() {
		var v domain.VehicleSales
		if err := rows.Scan(&v.Year, &v.VehiclesSold); err != nil {
			return nil, fmt.Errorf("scanning vehicle sales: %w", err)
		}
		sales = append(sales, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vehicle sales: %w", err)
	}

	return sales, nil
}

// ==================== Conversations ====================

// SaveConversation appends a finished session transcript.
func (s *Store) SaveConversation(ctx context.Context, sessionID string, turns []domain.Turn) error {
	if sessionID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO conversations (session_id, position, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id, position) DO UPDATE SET
			role = excluded.role,
			content = excluded.content,
			created_at = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, turn := range turns {
		at := turn.At
		if at.IsZero() {
			at = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, sessionID, i, string(turn.Role), turn.Content, at); err != nil {
			return fmt.Errorf("saving turn %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListConversations returns stored session IDs, most recent first.
func (s *Store) ListConversations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id FROM conversations
		GROUP BY session_id
		ORDER BY MAX(created_at) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}

	return ids, nil
}

// GetConversation returns the turns of one stored session.
func (s *Store) GetConversation(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, created_at FROM conversations
		WHERE session_id = ?
		ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn //nolint:prealloc // size unknown from query
	for rows.Next() {
		var turn domain.Turn
		var role string
		var at sql.NullTime
		if err := rows.Scan(&role, &turn.Content, &at); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turn.Role = domain.Role(role)
		if at.Valid {
			turn.At = at.Time
		}
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}

	if len(turns) == 0 {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}

	return turns, nil
}
