package files_repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/drive-clone/api/src/database"
	"github.com/drive-clone/api/src/domain/files"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const entryColumns = "id, owner_id, name, name_key, type, mime_type, size, parent_id, blob_id, created_at, updated_at"

// EntryRepository stores file and folder metadata in the entries table.
// Queries are written with ? placeholders and rebound for the active driver.
type EntryRepository struct {
	db     sqlx.ExtContext
	logger *logrus.Logger
	now    func() time.Time
}

func NewEntryRepository(db *sqlx.DB, logger *logrus.Logger) *EntryRepository {
	return &EntryRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the timestamp source (tests)
func (r *EntryRepository) SetClock(now func() time.Time) {
	r.now = now
}

// withExecutor returns a copy bound to a transaction
func (r *EntryRepository) withExecutor(ext sqlx.ExtContext) *EntryRepository {
	return &EntryRepository{db: ext, logger: r.logger, now: r.now}
}

func (r *EntryRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// EnsureTable creates the entries table and its indexes
func (r *EntryRepository) EnsureTable(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			name_key TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('file', 'folder')),
			mime_type TEXT,
			size BIGINT NOT NULL DEFAULT 0 CHECK (size >= 0),
			parent_id TEXT,
			blob_id TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_owner_parent ON entries (owner_id, parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_owner_updated ON entries (owner_id, updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_blob ON entries (blob_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_sibling_name ON entries (owner_id, (COALESCE(parent_id, '')), name_key)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure entries table: %w", err)
		}
	}
	return nil
}

// Query lists entries of one owner matching the filter
func (r *EntryRepository) Query(ctx context.Context, filter files.EntryFilter, order files.EntryOrder, limit int) ([]files.Entry, error) {
	query, args, err := buildEntryQuery(filter, order, limit)
	if err != nil {
		return nil, err
	}

	entries := []files.Entry{}
	if err := sqlx.SelectContext(ctx, r.db, &entries, r.db.Rebind(query), args...); err != nil {
		r.logger.WithError(err).WithField("owner_id", filter.OwnerID).Error("Failed to query entries")
		return nil, fmt.Errorf("query entries: %w", err)
	}
	return entries, nil
}

func buildEntryQuery(filter files.EntryFilter, order files.EntryOrder, limit int) (string, []any, error) {
	if filter.OwnerID == "" {
		return "", nil, fmt.Errorf("query entries: owner is required")
	}

	where := []string{"owner_id = ?"}
	args := []any{filter.OwnerID}

	if !filter.AllLevels {
		if filter.ParentID == nil {
			where = append(where, "parent_id IS NULL")
		} else {
			where = append(where, "parent_id = ?")
			args = append(args, *filter.ParentID)
		}
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.NameKey != "" {
		where = append(where, "name_key = ?")
		args = append(args, filter.NameKey)
	}
	if filter.NameLike != "" {
		where = append(where, `name_key LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(files.NameKey(filter.NameLike))+"%")
	}

	var orderBy string
	switch order {
	case files.OrderNameAsc:
		orderBy = "name_key ASC, id ASC"
	case files.OrderCreatedDesc:
		orderBy = "created_at DESC, name_key ASC, id ASC"
	default:
		orderBy = "updated_at DESC, name_key ASC, id ASC"
	}

	query := "SELECT " + entryColumns + " FROM entries WHERE " + strings.Join(where, " AND ") + " ORDER BY " + orderBy
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return query, args, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Get loads one entry by id
func (r *EntryRepository) Get(ctx context.Context, id string) (*files.Entry, error) {
	var entry files.Entry
	query := "SELECT " + entryColumns + " FROM entries WHERE id = ?"
	if err := sqlx.GetContext(ctx, r.db, &entry, r.db.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, files.NewNotFoundError("entry %s not found", id)
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &entry, nil
}

// Create inserts a new entry, assigning its id and timestamps
func (r *EntryRepository) Create(ctx context.Context, entry *files.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.NameKey = files.NameKey(entry.Name)
	now := r.timestamp()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	query := `INSERT INTO entries (` + entryColumns + `)
		VALUES (:id, :owner_id, :name, :name_key, :type, :mime_type, :size, :parent_id, :blob_id, :created_at, :updated_at)`

	bound, args, err := r.db.BindNamed(query, entry)
	if err != nil {
		return fmt.Errorf("bind entry insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, bound, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return files.NewConflictError("An item named %q already exists in this location", entry.Name)
		}
		r.logger.WithError(err).WithFields(logrus.Fields{
			"owner_id": entry.OwnerID,
			"name":     entry.Name,
		}).Error("Failed to insert entry")
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// Update applies a partial change and always bumps updated_at
func (r *EntryRepository) Update(ctx context.Context, id string, patch files.EntryPatch) (*files.Entry, error) {
	sets := []string{}
	args := []any{}

	if patch.Name != nil {
		sets = append(sets, "name = ?", "name_key = ?")
		args = append(args, *patch.Name, files.NameKey(*patch.Name))
	}
	if patch.SetParent {
		sets = append(sets, "parent_id = ?")
		args = append(args, patch.ParentID)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.timestamp(), id)

	query := "UPDATE entries SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			name := "this name"
			if patch.Name != nil {
				name = fmt.Sprintf("%q", *patch.Name)
			}
			return nil, files.NewConflictError("An item named %s already exists in this location", name)
		}
		return nil, fmt.Errorf("update entry: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, files.NewNotFoundError("entry %s not found", id)
	}

	return r.Get(ctx, id)
}

// Delete removes one entry record
func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM entries WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return files.NewNotFoundError("entry %s not found", id)
	}
	return nil
}

// UsageByMimeType aggregates an owner's files per MIME type inside the store
func (r *EntryRepository) UsageByMimeType(ctx context.Context, ownerID string) ([]files.MimeUsage, error) {
	query := `SELECT COALESCE(mime_type, '') AS mime_type, COUNT(*) AS count, COALESCE(SUM(size), 0) AS size
		FROM entries
		WHERE owner_id = ? AND type = 'file'
		GROUP BY COALESCE(mime_type, '')`

	rows := []files.MimeUsage{}
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), ownerID); err != nil {
		return nil, fmt.Errorf("aggregate usage: %w", err)
	}
	return rows, nil
}

// HasBlobReference reports whether any entry points at blobID
func (r *EntryRepository) HasBlobReference(ctx context.Context, blobID string) (bool, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, r.db.Rebind("SELECT COUNT(*) FROM entries WHERE blob_id = ?"), blobID); err != nil {
		return false, fmt.Errorf("check blob reference: %w", err)
	}
	return count > 0, nil
}
