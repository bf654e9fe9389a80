package causal

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/coherentnotebook/entropy/internal/logging"
	"github.com/coherentnotebook/entropy/internal/notebook"
)

var log = logging.GetLogger("causal")

// RecentEntropyWindow is how many of a notebook's most recent entries
// contribute to ActivityContext.RecentEntropy.
const RecentEntropyWindow = 10

// conn is the subset of *sql.Conn (and, for read-only callers, *sql.DB)
// the query helpers below need.
type conn interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Service assigns and queries causal positions against a SQLite
// database following the notebooks/entries schema in internal/store.
type Service struct {
	db *sql.DB
}

// NewService returns a Service backed by db. db should be configured
// with a single-connection pool (SetMaxOpenConns(1)), matching SQLite's
// single-writer model.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

func authorIDHex(id notebook.AuthorID) string {
	return hex.EncodeToString(id[:])
}

// AssignPosition atomically assigns the next causal position for a new
// entry. It acquires a BEGIN IMMEDIATE transaction on a single
// connection to serialize concurrent writers to the same notebook (the
// SQLite analogue of a row-level lock), computes the next sequence
// number and ActivityContext, then commits.
func (s *Service) AssignPosition(ctx context.Context, notebookID notebook.NotebookID, authorID notebook.AuthorID) (notebook.CausalPosition, error) {
	dbConn, err := s.db.Conn(ctx)
	if err != nil {
		return notebook.CausalPosition{}, fmt.Errorf("causal: acquire connection: %w", err)
	}
	defer dbConn.Close()

	if _, err := dbConn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return notebook.CausalPosition{}, fmt.Errorf("causal: begin immediate: %w", err)
	}

	pos, err := s.assignWithinTx(ctx, dbConn, notebookID, authorID)
	if err != nil {
		_, _ = dbConn.ExecContext(ctx, "ROLLBACK")
		return notebook.CausalPosition{}, err
	}

	if _, err := dbConn.ExecContext(ctx, "COMMIT"); err != nil {
		return notebook.CausalPosition{}, fmt.Errorf("causal: commit: %w", err)
	}
	return pos, nil
}

func (s *Service) assignWithinTx(ctx context.Context, c conn, notebookID notebook.NotebookID, authorID notebook.AuthorID) (notebook.CausalPosition, error) {
	exists, err := notebookExists(ctx, c, notebookID)
	if err != nil {
		return notebook.CausalPosition{}, err
	}
	if !exists {
		return notebook.CausalPosition{}, ErrNotebookNotFound
	}

	maxSeq, err := maxSequence(ctx, c, notebookID)
	if err != nil {
		return notebook.CausalPosition{}, err
	}

	activity, err := activityContext(ctx, c, notebookID, authorID)
	if err != nil {
		return notebook.CausalPosition{}, err
	}

	log.Debug("assigned causal position", "notebook_id", notebookID, "sequence", maxSeq+1)
	return notebook.CausalPosition{
		Sequence:        maxSeq + 1,
		ActivityContext: activity,
	}, nil
}

// ComputeActivityContext computes the ActivityContext for a hypothetical
// write by authorID into notebookID, without locking or assigning a
// sequence number. Useful for previews.
func (s *Service) ComputeActivityContext(ctx context.Context, notebookID notebook.NotebookID, authorID notebook.AuthorID) (notebook.ActivityContext, error) {
	exists, err := notebookExists(ctx, s.db, notebookID)
	if err != nil {
		return notebook.ActivityContext{}, err
	}
	if !exists {
		return notebook.ActivityContext{}, ErrNotebookNotFound
	}
	return activityContext(ctx, s.db, notebookID, authorID)
}

// CurrentSequence returns the notebook's current maximum sequence
// number, or 0 if it has no entries, without assigning a new one.
func (s *Service) CurrentSequence(ctx context.Context, notebookID notebook.NotebookID) (uint64, error) {
	exists, err := notebookExists(ctx, s.db, notebookID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotebookNotFound
	}
	return maxSequence(ctx, s.db, notebookID)
}

func activityContext(ctx context.Context, c conn, notebookID notebook.NotebookID, authorID notebook.AuthorID) (notebook.ActivityContext, error) {
	total, err := countEntries(ctx, c, notebookID)
	if err != nil {
		return notebook.ActivityContext{}, err
	}

	lastSeq, hasLast, err := authorLastSequence(ctx, c, notebookID, authorID)
	if err != nil {
		return notebook.ActivityContext{}, err
	}

	var sinceLast uint32
	if hasLast {
		sinceLast, err = countEntriesAfterSequence(ctx, c, notebookID, lastSeq)
		if err != nil {
			return notebook.ActivityContext{}, err
		}
	} else {
		sinceLast = total
	}

	entropy, err := recentEntropySum(ctx, c, notebookID, RecentEntropyWindow)
	if err != nil {
		return notebook.ActivityContext{}, err
	}

	return notebook.ActivityContext{
		EntriesSinceLastByAuthor: uint64(sinceLast),
		TotalNotebookEntries:     uint64(total),
		RecentEntropy:            entropy,
	}, nil
}

func notebookExists(ctx context.Context, c conn, notebookID notebook.NotebookID) (bool, error) {
	var id string
	err := c.QueryRowContext(ctx, `SELECT id FROM notebooks WHERE id = ?`, notebookID.String()).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("causal: check notebook exists: %w", err)
	}
	return true, nil
}

func maxSequence(ctx context.Context, c conn, notebookID notebook.NotebookID) (uint64, error) {
	var maxSeq sql.NullInt64
	err := c.QueryRowContext(ctx, `SELECT MAX(sequence) FROM entries WHERE notebook_id = ?`, notebookID.String()).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("causal: max sequence: %w", err)
	}
	if !maxSeq.Valid {
		return 0, nil
	}
	return uint64(maxSeq.Int64), nil
}

func countEntries(ctx context.Context, c conn, notebookID notebook.NotebookID) (uint32, error) {
	var count int64
	err := c.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE notebook_id = ?`, notebookID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("causal: count entries: %w", err)
	}
	return uint32(count), nil
}

func authorLastSequence(ctx context.Context, c conn, notebookID notebook.NotebookID, authorID notebook.AuthorID) (uint64, bool, error) {
	var lastSeq sql.NullInt64
	err := c.QueryRowContext(ctx,
		`SELECT MAX(sequence) FROM entries WHERE notebook_id = ? AND author_id = ?`,
		notebookID.String(), authorIDHex(authorID),
	).Scan(&lastSeq)
	if err != nil {
		return 0, false, fmt.Errorf("causal: author last sequence: %w", err)
	}
	if !lastSeq.Valid {
		return 0, false, nil
	}
	return uint64(lastSeq.Int64), true, nil
}

func countEntriesAfterSequence(ctx context.Context, c conn, notebookID notebook.NotebookID, sequence uint64) (uint32, error) {
	var count int64
	err := c.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE notebook_id = ? AND sequence > ?`,
		notebookID.String(), sequence,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("causal: count entries after sequence: %w", err)
	}
	return uint32(count), nil
}

func recentEntropySum(ctx context.Context, c conn, notebookID notebook.NotebookID, limit int) (float64, error) {
	var sum sql.NullFloat64
	err := c.QueryRowContext(ctx, `
		SELECT SUM(catalog_shift) FROM (
			SELECT catalog_shift FROM entries
			WHERE notebook_id = ?
			ORDER BY sequence DESC
			LIMIT ?
		)
	`, notebookID.String(), limit).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("causal: recent entropy: %w", err)
	}
	if !sum.Valid {
		return 0, nil
	}
	return sum.Float64, nil
}
