package acl

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"sonarrbot/internal/config"
	"sonarrbot/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes; an existing database
// with a different version fails Open rather than drifting silently.
const schemaVersion = 1

var (
	// ErrAlreadyAllowed reports an authorization attempt by a user who is
	// already in the allowed set.
	ErrAlreadyAllowed = errors.New("user already authorized")
	// ErrRevokedUser reports an authorization attempt by a revoked user.
	ErrRevokedUser = errors.New("user access revoked")
	// ErrNotFound reports a revoke or unrevoke of a user the relevant set
	// does not contain.
	ErrNotFound = errors.New("user not found")
	// ErrSchemaMismatch indicates the database was created by a different
	// sonarrbot version.
	ErrSchemaMismatch = errors.New("acl schema version mismatch")
	// ErrPersist reports a failed durable rewrite. The process must stop
	// serving rather than run with sets it could not commit.
	ErrPersist = errors.New("acl persist failed")
)

// Gate owns the allowed and revoked user sets.
type Gate struct {
	mu      sync.Mutex
	db      *sql.DB
	owner   int64
	logger  *slog.Logger
	allowed []Record
	revoked []Record
}

// Open connects to the ACL database under the configured state directory,
// creating the schema when the database is new, and loads both sets into
// memory. A malformed database is an error, not a silent reset.
func Open(cfg *config.Config, logger *slog.Logger) (*Gate, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Bot.StateDir, "acl.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open acl db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	gate := &Gate{
		db:     db,
		owner:  cfg.Bot.Owner,
		logger: logging.NewComponentLogger(logger, "acl"),
	}
	ctx := context.Background()
	if err := gate.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := gate.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	gate.logger.Info("access list loaded",
		logging.Int("allowed", len(gate.allowed)),
		logging.Int("revoked", len(gate.revoked)))
	return gate, nil
}

// Close closes the underlying database connection.
func (g *Gate) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	return g.db.Close()
}

// IsAuthorized reports whether userID is in the allowed set.
func (g *Gate) IsAuthorized(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return indexByID(g.allowed, userID) >= 0
}

// IsRevoked reports whether userID is in the revoked set.
func (g *Gate) IsRevoked(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return indexByID(g.revoked, userID) >= 0
}

// IsAdmin reports whether userID is the configured owner.
func (g *Gate) IsAdmin(userID int64) bool {
	return g.owner != 0 && userID == g.owner
}

// OwnerConfigured reports whether an owner id has been set.
func (g *Gate) OwnerConfigured() bool {
	return g.owner != 0
}

// Owner returns the configured owner id (0 before bootstrap).
func (g *Gate) Owner() int64 {
	return g.owner
}

// Allowed returns a copy of the allowed set in grant order.
func (g *Gate) Allowed() []Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Record(nil), g.allowed...)
}

// Revoked returns a copy of the revoked set.
func (g *Gate) Revoked() []Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Record(nil), g.revoked...)
}

// Authorize adds user to the allowed set and persists. The boolean is
// true when this was the first-ever grant, which triggers the owner
// bootstrap prompt. Already-allowed and revoked users are rejected with
// the matching sentinel and no mutation.
func (g *Gate) Authorize(ctx context.Context, user Record) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if indexByID(g.allowed, user.ID) >= 0 {
		return false, ErrAlreadyAllowed
	}
	if indexByID(g.revoked, user.ID) >= 0 {
		return false, ErrRevokedUser
	}

	g.allowed = append(g.allowed, user)
	if err := g.persistLocked(ctx); err != nil {
		g.allowed = g.allowed[:len(g.allowed)-1]
		return false, err
	}

	g.logger.Info("user authorized",
		logging.Int64(logging.FieldUserID, user.ID),
		logging.String("display_name", user.DisplayName()))
	return len(g.allowed) == 1, nil
}

// Revoke moves the user from the allowed set to the revoked set and
// persists. Returns the moved record.
func (g *Gate) Revoke(ctx context.Context, userID int64) (Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := indexByID(g.allowed, userID)
	if i < 0 {
		return Record{}, fmt.Errorf("%w: id %d is not allowed", ErrNotFound, userID)
	}

	record := g.allowed[i]
	g.allowed = append(g.allowed[:i], g.allowed[i+1:]...)
	g.revoked = append(g.revoked, record)
	if err := g.persistLocked(ctx); err != nil {
		g.revoked = g.revoked[:len(g.revoked)-1]
		g.allowed = append(g.allowed[:i], append([]Record{record}, g.allowed[i:]...)...)
		return Record{}, err
	}

	g.logger.Info("user revoked",
		logging.Int64(logging.FieldUserID, record.ID),
		logging.String("display_name", record.DisplayName()))
	return record, nil
}

// Unrevoke removes the user from the revoked set and persists. It does
// not add the user back to the allowed set; the user runs /auth again.
func (g *Gate) Unrevoke(ctx context.Context, userID int64) (Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := indexByID(g.revoked, userID)
	if i < 0 {
		return Record{}, fmt.Errorf("%w: id %d is not revoked", ErrNotFound, userID)
	}

	record := g.revoked[i]
	g.revoked = append(g.revoked[:i], g.revoked[i+1:]...)
	if err := g.persistLocked(ctx); err != nil {
		g.revoked = append(g.revoked[:i], append([]Record{record}, g.revoked[i:]...)...)
		return Record{}, err
	}

	g.logger.Info("user unrevoked",
		logging.Int64(logging.FieldUserID, record.ID),
		logging.String("display_name", record.DisplayName()))
	return record, nil
}

// persistLocked rewrites both tables from the in-memory sets in one
// transaction. Callers hold g.mu. Any failure is wrapped in ErrPersist.
func (g *Gate) persistLocked(ctx context.Context) error {
	if err := g.rewriteLocked(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (g *Gate) rewriteLocked(ctx context.Context) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin acl tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"allowed_users", "revoked_users"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := insertRecords(ctx, tx, "allowed_users", g.allowed); err != nil {
		return err
	}
	if err := insertRecords(ctx, tx, "revoked_users", g.revoked); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit acl tx: %w", err)
	}
	return nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, table string, records []Record) error {
	for i, record := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (position, user_id, username, first_name, last_name) VALUES (?, ?, ?, ?, ?)`,
			i, record.ID, record.Username, record.FirstName, record.LastName,
		)
		if err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}

func (g *Gate) initSchema(ctx context.Context) error {
	var tableExists int
	err := g.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := g.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit schema tx: %w", err)
		}
		return nil
	}

	var version int
	if err := g.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete acl.db to re-seed)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (g *Gate) load(ctx context.Context) error {
	allowed, err := g.loadTable(ctx, "allowed_users")
	if err != nil {
		return err
	}
	revoked, err := g.loadTable(ctx, "revoked_users")
	if err != nil {
		return err
	}

	for _, record := range allowed {
		if indexByID(revoked, record.ID) >= 0 {
			return fmt.Errorf("acl database corrupt: id %d present in both sets", record.ID)
		}
	}

	g.allowed = allowed
	g.revoked = revoked
	return nil
}

func (g *Gate) loadTable(ctx context.Context, table string) ([]Record, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT user_id, username, first_name, last_name FROM `+table+` ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.ID, &record.Username, &record.FirstName, &record.LastName); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func indexByID(records []Record, id int64) int {
	for i, record := range records {
		if record.ID == id {
			return i
		}
	}
	return -1
}
