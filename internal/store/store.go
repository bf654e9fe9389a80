package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/coherentnotebook/entropy/internal/logging"
	"github.com/coherentnotebook/entropy/internal/notebook"
)

var log = logging.GetLogger("store")

// Store is the durable-storage collaborator: a SQLite-backed notebook,
// author, and entry repository. It doubles as the entropy engine's
// Hydrator (cold-start snapshot reconstruction) and the propagation
// worker's CostUpdater (durable cumulative_cost updates).
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens (creating if needed) the SQLite database at path and
// configures it for SQLite's single-writer model.
func Open(path string) (*Store, error) {
	log.Info("opening store", "path", path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// InitSchema creates the schema if it doesn't already exist.
func (s *Store) InitSchema() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var name string
	err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='entries' LIMIT 1`).Scan(&name)
	if err == nil && name != "" {
		log.Debug("schema already initialized")
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(CoreSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO schema_version (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)`, SchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}

	log.Info("store schema initialized", "version", SchemaVersion)
	return nil
}

// DB returns the underlying connection pool, for collaborators (such as
// the causal-position service) that need to manage their own
// transactions against the same database.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func authorIDHex(id notebook.AuthorID) string {
	return hex.EncodeToString(id[:])
}

func authorIDFromHex(s string) (notebook.AuthorID, error) {
	var id notebook.AuthorID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("store: author id %q is not %d bytes", s, len(id))
	}
	copy(id[:], b)
	return id, nil
}

// CreateAuthor registers an author, idempotently.
func (s *Store) CreateAuthor(ctx context.Context, id notebook.AuthorID, publicKey []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO authors (id, public_key) VALUES (?, ?)`,
		authorIDHex(id), publicKey,
	)
	if err != nil {
		return fmt.Errorf("create author: %w", err)
	}
	return nil
}

// CreateNotebook registers a notebook owned by ownerID.
func (s *Store) CreateNotebook(ctx context.Context, id notebook.NotebookID, name string, ownerID notebook.AuthorID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notebooks (id, name, owner_id) VALUES (?, ?, ?)`,
		id.String(), name, authorIDHex(ownerID),
	)
	if err != nil {
		return fmt.Errorf("create notebook: %w", err)
	}
	return nil
}

// NotebookExists reports whether id names a registered notebook.
func (s *Store) NotebookExists(ctx context.Context, id notebook.NotebookID) (bool, error) {
	var got string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM notebooks WHERE id = ?`, id.String()).Scan(&got)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check notebook exists: %w", err)
	}
	return true, nil
}

// InsertEntry persists entry (assumed to already carry its assigned
// CausalPosition and computed IntegrationCost) into notebookID.
func (s *Store) InsertEntry(ctx context.Context, notebookID notebook.NotebookID, entry *notebook.Entry) error {
	refs, err := json.Marshal(entry.References)
	if err != nil {
		return fmt.Errorf("marshal references: %w", err)
	}

	var revisionOf *string
	if entry.RevisionOf != nil {
		s := entry.RevisionOf.String()
		revisionOf = &s
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (
			id, notebook_id, author_id, content, content_type, topic,
			reference_ids, revision_of, signature, sequence,
			entries_since_last_by_author, total_notebook_entries, recent_entropy,
			entries_revised, references_broken, catalog_shift, orphan,
			cumulative_cost, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID.String(), notebookID.String(), authorIDHex(entry.Author), entry.Content, entry.ContentType, entry.Topic,
		string(refs), revisionOf, entry.Signature, entry.CausalPosition.Sequence,
		entry.CausalPosition.EntriesSinceLastByAuthor, entry.CausalPosition.TotalNotebookEntries, entry.CausalPosition.RecentEntropy,
		entry.IntegrationCost.EntriesRevised, entry.IntegrationCost.ReferencesBroken, entry.IntegrationCost.CatalogShift, entry.IntegrationCost.Orphan,
		0.0, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// LoadEntries returns every entry in notebookID ordered by sequence,
// implementing the entropy engine's Hydrator interface's data access.
func (s *Store) LoadEntries(ctx context.Context, notebookID notebook.NotebookID) ([]*notebook.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, content, content_type, topic, reference_ids,
		       revision_of, signature, sequence,
		       entries_since_last_by_author, total_notebook_entries, recent_entropy,
		       entries_revised, references_broken, catalog_shift, orphan, created_at
		FROM entries WHERE notebook_id = ? ORDER BY sequence ASC
	`, notebookID.String())
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	var entries []*notebook.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*notebook.Entry, error) {
	var (
		idStr, authorHex, contentType, topic, refsJSON string
		revisionOf                                     sql.NullString
		content, signature                             []byte
		sequence                                        int64
		sinceLast, total                                int64
		recentEntropy                                   float64
		entriesRevised, referencesBroken                int64
		catalogShift                                    float64
		orphan                                          bool
		createdAt                                       time.Time
	)
	if err := row.Scan(&idStr, &authorHex, &content, &contentType, &topic, &refsJSON,
		&revisionOf, &signature, &sequence,
		&sinceLast, &total, &recentEntropy,
		&entriesRevised, &referencesBroken, &catalogShift, &orphan, &createdAt); err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}

	id, err := parseUUID(idStr)
	if err != nil {
		return nil, err
	}
	author, err := authorIDFromHex(authorHex)
	if err != nil {
		return nil, err
	}
	var refs []notebook.EntryID
	if err := json.Unmarshal([]byte(refsJSON), &refs); err != nil {
		return nil, fmt.Errorf("unmarshal references: %w", err)
	}

	var revisionOfID *notebook.EntryID
	if revisionOf.Valid {
		parsed, err := parseUUID(revisionOf.String)
		if err != nil {
			return nil, err
		}
		revisionOfID = &parsed
	}

	return &notebook.Entry{
		ID:          id,
		Author:      author,
		Content:     content,
		ContentType: contentType,
		Topic:       topic,
		References:  refs,
		RevisionOf:  revisionOfID,
		Signature:   signature,
		CausalPosition: notebook.CausalPosition{
			Sequence: uint64(sequence),
			ActivityContext: notebook.ActivityContext{
				EntriesSinceLastByAuthor: uint64(sinceLast),
				TotalNotebookEntries:     uint64(total),
				RecentEntropy:            recentEntropy,
			},
		},
		IntegrationCost: notebook.IntegrationCost{
			EntriesRevised:   uint32(entriesRevised),
			ReferencesBroken: uint32(referencesBroken),
			CatalogShift:     catalogShift,
			Orphan:           orphan,
		},
		CreatedAt: createdAt,
	}, nil
}

// HydrateNotebook implements entropy.Hydrator: it loads every persisted
// entry for notebookID, reporting found=false only if the notebook
// itself is unregistered (as opposed to merely empty).
func (s *Store) HydrateNotebook(notebookID notebook.NotebookID) ([]*notebook.Entry, bool, error) {
	ctx := context.Background()
	exists, err := s.NotebookExists(ctx, notebookID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}
	entries, err := s.LoadEntries(ctx, notebookID)
	if err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// UpdateCumulativeCost implements propagation.CostUpdater: it adds
// costDelta to each named entry's cumulative_cost within notebookID.
// jobID is recorded in processed_propagation_jobs inside the same
// transaction as the update, so a replayed job with an already-recorded
// jobID is skipped rather than double-applied. This is the store-side
// defence in depth behind the worker's own in-memory completed-job set.
func (s *Store) UpdateCumulativeCost(ctx context.Context, jobID uuid.UUID, notebookID notebook.NotebookID, entryIDs []notebook.EntryID, costDelta float64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin cumulative cost update: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO processed_propagation_jobs (job_id) VALUES (?)`,
		jobID.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("record processed job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("record processed job: %w", err)
	}
	if n == 0 {
		log.Debug("skipping already-processed propagation job", "job_id", jobID)
		return 0, nil
	}

	updated := 0
	for _, id := range entryIDs {
		res, err := tx.ExecContext(ctx,
			`UPDATE entries SET cumulative_cost = cumulative_cost + ? WHERE id = ? AND notebook_id = ?`,
			costDelta, id.String(), notebookID.String(),
		)
		if err != nil {
			return updated, fmt.Errorf("update cumulative cost: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return updated, fmt.Errorf("update cumulative cost: %w", err)
		}
		updated += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit cumulative cost update: %w", err)
	}
	return updated, nil
}
