package lexicon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"voice-filler-gate/internal/filler"
	"voice-filler-gate/internal/observability/logging"
	"voice-filler-gate/internal/observability/metrics"
)

// DefaultPath is the lexicon database file name shared by the live gate and
// the admin tool. Both sides must open the same file for admin edits to take
// effect on the filtering path.
const DefaultPath = "filler_words.db"

// ErrEmptyWord is returned when a mutating operation receives a word that is
// empty after normalization.
var ErrEmptyWord = errors.New("lexicon: word is empty")

// Store is the sqlite-backed filler lexicon. It implements filler.Source via
// Words, serving the hardcoded fallback vocabulary when the database is
// unreachable so the filtering path never goes down with storage.
type Store struct {
	db      *sql.DB
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// Open opens (creating if needed) the lexicon database at path and applies
// the schema. WAL mode and a busy timeout let the admin tool and the gate
// share the file across processes.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon db: %w", err)
	}

	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	// churn between the pooled connections of one process.
	db.SetMaxOpenConns(1)

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS filler_words (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			word TEXT NOT NULL UNIQUE
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate lexicon db: %w", err)
		}
	}

	return &Store{
		db:      db,
		log:     logging.WithComponent("lexicon"),
		metrics: metrics.DefaultMetrics,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize seeds the default vocabulary when the table is empty.
// Idempotent; safe to call on every process start.
func (s *Store) Initialize(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin initialize: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM filler_words`).Scan(&count); err != nil {
		return fmt.Errorf("count filler words: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, word := range defaultVocabulary {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO filler_words (word) VALUES (?)`, word); err != nil {
			return fmt.Errorf("seed word %q: %w", word, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit initialize: %w", err)
	}

	s.log.Info().Int("words", len(defaultVocabulary)).Msg("Initialized lexicon with default vocabulary")
	return nil
}

// Words returns the current membership set. It implements filler.Source and
// is consulted on every classification, so admin edits are picked up without
// a restart. Storage failures fall back to the hardcoded core set instead of
// propagating: the gate sits in the live audio path and must keep filtering.
func (s *Store) Words(ctx context.Context) map[string]struct{} {
	rows, err := s.db.QueryContext(ctx, `SELECT word FROM filler_words`)
	if err != nil {
		s.log.Error().Err(err).Msg("Lexicon read failed, serving fallback vocabulary")
		fallback := FallbackVocabulary()
		s.metrics.RecordLexiconRead(len(fallback), true)
		return fallback
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			s.log.Error().Err(err).Msg("Lexicon scan failed, serving fallback vocabulary")
			fallback := FallbackVocabulary()
			s.metrics.RecordLexiconRead(len(fallback), true)
			return fallback
		}
		set[filler.Normalize(word)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		s.log.Error().Err(err).Msg("Lexicon iteration failed, serving fallback vocabulary")
		fallback := FallbackVocabulary()
		s.metrics.RecordLexiconRead(len(fallback), true)
		return fallback
	}

	s.metrics.RecordLexiconRead(len(set), false)
	return set
}

// List returns all words sorted alphabetically. Unlike Words it propagates
// storage errors so the admin tool can report them.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word FROM filler_words ORDER BY word`)
	if err != nil {
		return nil, fmt.Errorf("list filler words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("scan filler word: %w", err)
		}
		words = append(words, word)
	}
	return words, rows.Err()
}

// Add inserts the normalized word. Returns added=false without error when
// the word is already present. Empty words are rejected with ErrEmptyWord
// before any storage call.
func (s *Store) Add(ctx context.Context, word string) (bool, error) {
	w := filler.Normalize(word)
	if w == "" {
		return false, ErrEmptyWord
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO filler_words (word) VALUES (?) ON CONFLICT(word) DO NOTHING`, w)
	if err != nil {
		return false, fmt.Errorf("add filler word %q: %w", w, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add filler word %q: %w", w, err)
	}
	if n == 0 {
		s.log.Warn().Str("word", w).Msg("Filler word already in lexicon")
		return false, nil
	}
	return true, nil
}

// AddMany inserts several words in one transaction with per-word duplicate
// detection. Words empty after normalization are dropped silently. On error
// the transaction rolls back and the lexicon is unchanged.
func (s *Store) AddMany(ctx context.Context, words []string) (added, skipped []string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin add many: %w", err)
	}
	defer tx.Rollback()

	for _, word := range words {
		w := filler.Normalize(word)
		if w == "" {
			continue
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO filler_words (word) VALUES (?) ON CONFLICT(word) DO NOTHING`, w)
		if err != nil {
			return nil, nil, fmt.Errorf("add filler word %q: %w", w, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, nil, fmt.Errorf("add filler word %q: %w", w, err)
		}
		if n == 0 {
			skipped = append(skipped, w)
		} else {
			added = append(added, w)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit add many: %w", err)
	}
	return added, skipped, nil
}

// Remove deletes the normalized word if present and reports whether a row
// was actually deleted.
func (s *Store) Remove(ctx context.Context, word string) (bool, error) {
	w := filler.Normalize(word)
	if w == "" {
		return false, ErrEmptyWord
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM filler_words WHERE word = ?`, w)
	if err != nil {
		return false, fmt.Errorf("remove filler word %q: %w", w, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove filler word %q: %w", w, err)
	}
	return n > 0, nil
}

// Clear deletes all entries and returns the number removed. Confirmation is
// the caller's responsibility; the store just executes.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM filler_words`)
	if err != nil {
		return 0, fmt.Errorf("clear lexicon: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear lexicon: %w", err)
	}
	s.log.Info().Int64("removed", n).Msg("Cleared lexicon")
	return n, nil
}
