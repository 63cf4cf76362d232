package store

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"EarningsRadar/internal/model"
)

// ProfileStore persists profile records to a SQLite database. All records are
// loaded into memory at startup; Put stages a record and Flush writes the
// staged set in one transaction, so callers can batch writes and bound the
// data-loss window on crash.
type ProfileStore struct {
	db  *sql.DB
	log zerolog.Logger

	mu      sync.Mutex
	records map[string]model.ProfileRecord
	dirty   map[string]struct{}
}

// OpenProfileStore opens (or creates) the database, runs migrations and loads
// all existing records.
func OpenProfileStore(dbPath string, log zerolog.Logger) (*ProfileStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent reads while a refresh cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &ProfileStore{
		db:      db,
		log:     log.With().Str("component", "profile_store").Logger(),
		records: make(map[string]model.ProfileRecord),
		dirty:   make(map[string]struct{}),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	s.log.Info().Str("path", dbPath).Int("records", len(s.records)).Msg("profile store opened")
	return s, nil
}

func (s *ProfileStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS profiles (
		symbol       TEXT PRIMARY KEY,
		sector       TEXT NOT NULL,
		industry     TEXT NOT NULL,
		last_updated INTEGER NOT NULL
	)`)
	return err
}

func (s *ProfileStore) load() error {
	rows, err := s.db.Query(`SELECT symbol, sector, industry, last_updated FROM profiles`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var symbol string
		var rec model.ProfileRecord
		if err := rows.Scan(&symbol, &rec.Sector, &rec.Industry, &rec.LastUpdated); err != nil {
			return err
		}
		s.records[symbol] = rec
	}
	return rows.Err()
}

// All returns a copy of every record, keyed by symbol.
func (s *ProfileStore) All() map[string]model.ProfileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]model.ProfileRecord, len(s.records))
	for sym, rec := range s.records {
		out[sym] = rec
	}
	return out
}

// Get returns the record for one symbol.
func (s *ProfileStore) Get(symbol string) (model.ProfileRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[symbol]
	return rec, ok
}

// Put stages a record. It is visible to readers immediately but only durable
// after the next Flush.
func (s *ProfileStore) Put(symbol string, rec model.ProfileRecord) {
	s.mu.Lock()
	s.records[symbol] = rec
	s.dirty[symbol] = struct{}{}
	s.mu.Unlock()
}

// Flush writes all staged records in one transaction.
func (s *ProfileStore) Flush() error {
	s.mu.Lock()
	pending := make(map[string]model.ProfileRecord, len(s.dirty))
	for sym := range s.dirty {
		pending[sym] = s.records[sym]
	}
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin flush: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO profiles (symbol, sector, industry, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			sector = excluded.sector,
			industry = excluded.industry,
			last_updated = excluded.last_updated`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare flush: %w", err)
	}
	for sym, rec := range pending {
		if _, err := stmt.Exec(sym, rec.Sector, rec.Industry, rec.LastUpdated); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("flush %s: %w", sym, err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit flush: %w", err)
	}

	s.mu.Lock()
	for sym := range pending {
		delete(s.dirty, sym)
	}
	s.mu.Unlock()

	s.log.Debug().Int("records", len(pending)).Msg("flushed profiles")
	return nil
}

// Close flushes any staged records and closes the database.
func (s *ProfileStore) Close() error {
	if err := s.Flush(); err != nil {
		s.log.Error().Err(err).Msg("flush on close failed")
	}
	return s.db.Close()
}
