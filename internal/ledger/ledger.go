// Package ledger keeps optimistically recorded punches in a local file and
// reconciles them against the authoritative server record. The ledger is the
// only mutable state shared between the punch flow and the refresh flow; it
// is fully rewritten on every mutation, never patched in place.
package ledger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"pontoctl/internal/model"
)

const fileName = "pending_punches.json"

// TTL bounds how long an unconfirmed punch survives locally. Past it, the
// server either has the punch or never will; keeping the entry longer only
// grows the ledger from failed or duplicate writes.
const TTL = 15 * time.Minute

// Store reads and writes the pending-punch ledger.
type Store struct {
	path string
	log  *zap.Logger
	now  func() time.Time
}

// NewStore creates a ledger store rooted in stateDir.
func NewStore(stateDir string, log *zap.Logger) *Store {
	return &Store{
		path: filepath.Join(stateDir, fileName),
		log:  log,
		now:  time.Now,
	}
}

// Append records a freshly confirmed punch as pending.
func (s *Store) Append(entry model.PendingPunch) error {
	entries, err := s.load()
	if err != nil {
		return err
	}
	return s.write(append(entries, entry))
}

// Merge folds still-unconfirmed pending punches into the server list. A
// pending entry is discarded when it is older than TTL or when any server
// event's timestamp is at or past its own (the server caught up; the vendor's
// fields are not stable across the write path, so exact matching is not
// attempted). The result is the union, sorted by timestamp ascending, with
// each pending entry appearing at most once. Evictions are persisted.
func (s *Store) Merge(server []model.PunchEvent) []model.PunchEvent {
	entries, err := s.load()
	if err != nil {
		s.log.Warn("reading pending punches", zap.Error(err))
	}
	if len(entries) == 0 {
		return sortEvents(server, nil)
	}

	now := s.now()
	kept := make([]model.PendingPunch, 0, len(entries))
	for _, entry := range entries {
		age := now.Sub(time.UnixMilli(entry.CreatedAt))
		if age > TTL {
			s.log.Debug("evicting expired pending punch",
				zap.String("time", entry.Time),
				zap.Duration("age", age))
			continue
		}
		if confirmed(server, entry.Timestamp) {
			continue
		}
		kept = append(kept, entry)
	}
	if len(kept) != len(entries) {
		if err := s.write(kept); err != nil {
			s.log.Warn("rewriting pending punches", zap.Error(err))
		}
	}
	return sortEvents(server, kept)
}

// confirmed reports whether any server event is at or past the pending
// punch's timestamp.
func confirmed(server []model.PunchEvent, tsMillis int64) bool {
	at := time.UnixMilli(tsMillis)
	for _, ev := range server {
		if when, ok := ev.When(); ok && !when.Before(at) {
			return true
		}
	}
	return false
}

// sortEvents merges server events and pending entries into one time-ordered
// list. Pending entries sort by their millisecond timestamp, which is more
// precise than the minute-resolution wire strings.
func sortEvents(server []model.PunchEvent, pending []model.PendingPunch) []model.PunchEvent {
	type timed struct {
		at time.Time
		ev model.PunchEvent
	}
	all := make([]timed, 0, len(server)+len(pending))
	for _, ev := range server {
		at, _ := ev.When()
		all = append(all, timed{at: at, ev: ev})
	}
	for _, p := range pending {
		all = append(all, timed{at: time.UnixMilli(p.Timestamp), ev: p.Event()})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })

	out := make([]model.PunchEvent, len(all))
	for i, t := range all {
		out[i] = t.ev
	}
	return out
}

func (s *Store) load() ([]model.PendingPunch, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []model.PendingPunch
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) write(entries []model.PendingPunch) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}
