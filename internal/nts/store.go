package nts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrDuplicateID is returned by Add when the collection already holds a
// record with the same id.
var ErrDuplicateID = errors.New("duplicate record id")

// State is the lifecycle position of a Store.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateSynced
	StateMutated
	StatePersisting
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateSynced:
		return "synced"
	case StateMutated:
		return "mutated"
	case StatePersisting:
		return "persisting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Source records where the last load came from.
type Source int

const (
	SourceNone Source = iota
	SourceRemote
	SourceLocal
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceLocal:
		return "local"
	default:
		return "none"
	}
}

// Keys names the local storage a Store owns.
type Keys struct {
	// Collection holds the JSON array of records.
	Collection string

	// Index holds the display cursor as decimal text. Empty disables persistence
	// of the cursor.
	Index string

	// Shared marks collections the companion process displays. Writes to
	// them broadcast a reload.
	Shared bool
}

func (k Keys) purgeKey() string { return k.Collection + ".purge" }

// Store is the single source of truth for one record type's in-memory
// collection. Every mutation writes the local fallback synchronously and
// schedules a best-effort remote write on the runner. Remote errors are
// logged, never returned.
type Store[T Record[T]] struct {
	keys     Keys
	local    LocalStore
	remote   RemoteStore[T]
	notifier Notifier
	runner   Runner
	logger   Logger
	clock    Clock
	idgen    IDGenerator

	mu     sync.Mutex
	items  []T
	cursor int
	state  State
	source Source

	// remoteMu serializes remote work so a pending purge never interleaves
	// with a save.
	remoteMu sync.Mutex
}

// NewStore creates a Store. remote may be nil for a local-only store.
func NewStore[T Record[T]](keys Keys, local LocalStore, remote RemoteStore[T], notifier Notifier, runner Runner, logger Logger, clock Clock, idgen IDGenerator) *Store[T] {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Store[T]{
		keys:     keys,
		local:    local,
		remote:   remote,
		notifier: notifier,
		runner:   runner,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
		items:    []T{},
	}
}

// Start begins loading on the runner.
func (s *Store[T]) Start(ctx context.Context) {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()
	s.runner.Go(func() {
		if err := s.Load(ctx); err != nil {
			s.logger.Error("load failed", "key", s.keys.Collection, "error", err)
		}
	})
}

// Load replaces the in-memory collection, preferring the remote store and
// falling back to the local cache when the remote is unavailable, the fetch
// fails, or a pending delete-all cannot be finished. The collection is
// replaced without going through persist. The only remote write a load
// schedules is the upload of records written after a delete-all it just
// finished.
func (s *Store[T]) Load(ctx context.Context) error {
	s.setState(StateLoading)
	cached := s.readLocal()

	if s.remote != nil && s.remote.IsAvailable(ctx) {
		s.remoteMu.Lock()
		purged, err := s.finishPurge(ctx)
		if err != nil {
			s.remoteMu.Unlock()
			s.logger.Warn("remote delete-all still pending, using local cache", "key", s.keys.Collection, "error", err)
			return s.finishLoad(cached, SourceLocal, false)
		}
		fetched, err := s.remote.FetchAll(ctx)
		s.remoteMu.Unlock()
		if err == nil {
			if purged {
				return s.finishPurgedLoad(ctx, fetched, cached)
			}
			items, kept := reconcile(fetched, cached)
			if kept > 0 {
				s.logger.Info("kept newer cached records over remote", "key", s.keys.Collection, "count", kept)
			}
			s.logger.Debug("loaded from remote", "key", s.keys.Collection, "count", len(items))
			return s.finishLoad(items, SourceRemote, true)
		}
		s.logger.Warn("remote fetch failed, using local cache", "key", s.keys.Collection, "error", err)
	}

	s.logger.Debug("loaded from local cache", "key", s.keys.Collection, "count", len(cached))
	return s.finishLoad(cached, SourceLocal, false)
}

func (s *Store[T]) finishLoad(items []T, src Source, refreshCache bool) error {
	s.mu.Lock()
	s.items = items
	s.source = src
	s.cursor = s.readIndex(len(items))
	s.state = StateSynced
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if !refreshCache {
		return nil
	}
	// Keep the local cache current so the companion sees remote data.
	if err := s.writeLocal(snapshot); err != nil {
		return fmt.Errorf("refreshing local cache: %w", err)
	}
	return nil
}

// finishPurgedLoad completes a load that just finished a pending delete-all.
// The local cache was emptied by the clear, so everything in it was written
// afterwards and never reached the remote. Those records are kept and
// uploaded.
func (s *Store[T]) finishPurgedLoad(ctx context.Context, fetched, cached []T) error {
	items, _ := Merge(fetched, cached)
	SortByDateDesc(items)
	s.logger.Info("loaded after resumed delete-all", "key", s.keys.Collection, "count", len(items), "local", len(cached))
	if err := s.finishLoad(items, SourceRemote, true); err != nil {
		return err
	}
	s.scheduleRemoteSave(ctx, items)
	return nil
}

// finishPurge completes a delete-all recorded by the purge marker. It
// reports whether a purge was pending. Callers hold remoteMu.
func (s *Store[T]) finishPurge(ctx context.Context) (bool, error) {
	marker, err := s.local.Read(s.keys.purgeKey())
	if err != nil {
		return false, fmt.Errorf("reading purge marker: %w", err)
	}
	if marker == nil {
		return false, nil
	}
	n, err := s.remote.DeleteAll(ctx)
	if err != nil {
		return true, fmt.Errorf("remote delete-all: %w", err)
	}
	if err := s.local.Delete(s.keys.purgeKey()); err != nil {
		s.logger.Warn("clearing purge marker", "key", s.keys.Collection, "error", err)
	}
	s.logger.Info("remote delete-all complete", "key", s.keys.Collection, "deleted", n)
	return true, nil
}

// Items returns a copy of the collection, newest first.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Get returns the record with the given id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfLocked(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store[T]) Source() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Add assigns an id and date if unset and inserts the record at the front.
// Duplicate content is allowed, a duplicate id is not: a caller-set id that
// is already present returns ErrDuplicateID and nothing is written.
func (s *Store[T]) Add(ctx context.Context, rec T) (T, error) {
	rec = rec.WithIdentity(s.newID(rec), s.clock.Now().UTC())
	if err := rec.Validate(); err != nil {
		return rec, err
	}

	s.mu.Lock()
	if s.indexOfLocked(rec.RecordID()) >= 0 {
		s.mu.Unlock()
		return rec, fmt.Errorf("%w: %s", ErrDuplicateID, rec.RecordID())
	}
	s.items = append([]T{rec}, s.items...)
	snapshot := s.mutatedLocked()
	s.mu.Unlock()

	return rec, s.persist(ctx, snapshot)
}

// Update replaces the record with the same id and sets lastModified to now.
// A record whose id is not present is inserted at the front instead.
func (s *Store[T]) Update(ctx context.Context, rec T) (T, error) {
	now := s.clock.Now().UTC()
	rec = rec.WithIdentity(s.newID(rec), now).Touched(now)
	if err := rec.Validate(); err != nil {
		return rec, err
	}

	s.mu.Lock()
	if i := s.indexOfLocked(rec.RecordID()); i >= 0 {
		s.items[i] = rec
	} else {
		s.items = append([]T{rec}, s.items...)
	}
	snapshot := s.mutatedLocked()
	s.mu.Unlock()

	return rec, s.persist(ctx, snapshot)
}

// Delete removes the record with the given id. It reports whether a record
// was removed.
func (s *Store[T]) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.clampCursorLocked()
	snapshot := s.mutatedLocked()
	cursor := s.cursor
	s.mu.Unlock()

	if err := s.persistWithCursor(ctx, snapshot, cursor); err != nil {
		return true, err
	}
	s.scheduleRemoteDelete(ctx, []string{id})
	return true, nil
}

// DeleteAt removes records by position. Out-of-range positions are ignored.
func (s *Store[T]) DeleteAt(ctx context.Context, positions ...int) ([]T, error) {
	s.mu.Lock()
	drop := make(map[int]bool, len(positions))
	for _, p := range positions {
		if p >= 0 && p < len(s.items) {
			drop[p] = true
		}
	}
	if len(drop) == 0 {
		s.mu.Unlock()
		return nil, nil
	}
	var removed []T
	kept := make([]T, 0, len(s.items)-len(drop))
	for i, rec := range s.items {
		if drop[i] {
			removed = append(removed, rec)
			continue
		}
		kept = append(kept, rec)
	}
	s.items = kept
	s.clampCursorLocked()
	snapshot := s.mutatedLocked()
	cursor := s.cursor
	s.mu.Unlock()

	if err := s.persistWithCursor(ctx, snapshot, cursor); err != nil {
		return removed, err
	}
	ids := make([]string, len(removed))
	for i, rec := range removed {
		ids[i] = rec.RecordID()
	}
	s.scheduleRemoteDelete(ctx, ids)
	return removed, nil
}

// DeleteReversed removes records by position in the oldest-first view of
// the collection.
func (s *Store[T]) DeleteReversed(ctx context.Context, positions ...int) ([]T, error) {
	n := s.Len()
	mapped := make([]int, 0, len(positions))
	for _, p := range positions {
		mapped = append(mapped, n-1-p)
	}
	return s.DeleteAt(ctx, mapped...)
}

// DeleteAll clears the collection and removes every remote record. A purge
// marker stays in the local store until the remote delete completes. The
// next remote operation or load finishes an interrupted delete before it
// touches the remote, so records written after the clear survive it.
func (s *Store[T]) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	s.items = []T{}
	s.cursor = 0
	s.state = StatePersisting
	s.mu.Unlock()

	if err := s.writeLocal(nil); err != nil {
		return err
	}
	if err := s.writeIndex(0); err != nil {
		return err
	}
	s.setState(StateSynced)

	if s.remote == nil {
		return nil
	}
	if err := s.local.Write(s.keys.purgeKey(), []byte(s.clock.Now().UTC().Format(time.RFC3339))); err != nil {
		return fmt.Errorf("writing purge marker: %w", err)
	}

	bg := context.WithoutCancel(ctx)
	s.runner.Go(func() {
		if !s.remote.IsAvailable(bg) {
			s.logger.Info("remote unavailable, delete-all deferred", "key", s.keys.Collection)
			return
		}
		s.remoteMu.Lock()
		defer s.remoteMu.Unlock()
		if _, err := s.finishPurge(bg); err != nil {
			s.logger.Error("remote delete-all failed", "key", s.keys.Collection, "error", err)
		}
	})
	return nil
}

// Replace overwrites the collection with records, as a confirmed full
// import does.
func (s *Store[T]) Replace(ctx context.Context, records []T) error {
	items := make([]T, len(records))
	copy(items, records)

	s.mu.Lock()
	s.items = items
	s.clampCursorLocked()
	snapshot := s.mutatedLocked()
	cursor := s.cursor
	s.mu.Unlock()

	return s.persistWithCursor(ctx, snapshot, cursor)
}

// Restore puts back an earlier copy of the collection, as when undoing a
// failed import. Records absent from prior are deleted from the remote too.
func (s *Store[T]) Restore(ctx context.Context, prior []T) error {
	keep := make(map[string]bool, len(prior))
	for _, rec := range prior {
		keep[rec.RecordID()] = true
	}
	var extra []string
	s.mu.Lock()
	for _, rec := range s.items {
		if !keep[rec.RecordID()] {
			extra = append(extra, rec.RecordID())
		}
	}
	s.mu.Unlock()

	if err := s.Replace(ctx, prior); err != nil {
		return err
	}
	s.scheduleRemoteDelete(ctx, extra)
	return nil
}

// Merge folds imported records into the collection by identity and
// last-writer-wins. Nothing is written when the merge changes nothing.
func (s *Store[T]) Merge(ctx context.Context, imported []T) (MergeResult, error) {
	s.mu.Lock()
	merged, res := Merge(s.items, imported)
	if !res.Changed() {
		s.mu.Unlock()
		return res, nil
	}
	s.items = merged
	snapshot := s.mutatedLocked()
	s.mu.Unlock()

	return res, s.persist(ctx, snapshot)
}

// CurrentIndex returns the display cursor.
func (s *Store[T]) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// SetCurrentIndex moves the display cursor. Out-of-range values reset it to 0.
func (s *Store[T]) SetCurrentIndex(i int) error {
	s.mu.Lock()
	s.cursor = i
	s.clampCursorLocked()
	cursor := s.cursor
	s.mu.Unlock()
	return s.writeIndex(cursor)
}

// Advance moves the cursor to the next record, wrapping at the end, and
// returns the new position.
func (s *Store[T]) Advance() (int, error) {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.cursor = 0
	} else {
		s.cursor = (s.cursor + 1) % len(s.items)
	}
	cursor := s.cursor
	s.mu.Unlock()
	return cursor, s.writeIndex(cursor)
}

// Wait blocks until scheduled remote work has finished.
func (s *Store[T]) Wait() { s.runner.Wait() }

func (s *Store[T]) newID(rec T) string {
	if id := rec.RecordID(); id != "" {
		return id
	}
	return s.idgen.New()
}

func (s *Store[T]) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Store[T]) indexOfLocked(id string) int {
	for i, rec := range s.items {
		if rec.RecordID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) clampCursorLocked() {
	if s.cursor < 0 || s.cursor >= len(s.items) {
		s.cursor = 0
	}
}

func (s *Store[T]) snapshotLocked() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store[T]) mutatedLocked() []T {
	s.state = StateMutated
	return s.snapshotLocked()
}

func (s *Store[T]) persistWithCursor(ctx context.Context, snapshot []T, cursor int) error {
	if err := s.writeIndex(cursor); err != nil {
		return err
	}
	return s.persist(ctx, snapshot)
}

// persist writes the local fallback, then schedules the remote save of the
// whole collection.
func (s *Store[T]) persist(ctx context.Context, snapshot []T) error {
	s.setState(StatePersisting)
	if err := s.writeLocal(snapshot); err != nil {
		s.setState(StateMutated)
		return err
	}
	s.setState(StateSynced)

	s.scheduleRemoteSave(ctx, snapshot)
	return nil
}

// scheduleRemoteSave uploads records on the runner once any pending
// delete-all has finished. A purge that still fails skips the save, since
// the purge would take the saved records with it.
func (s *Store[T]) scheduleRemoteSave(ctx context.Context, snapshot []T) {
	if s.remote == nil || len(snapshot) == 0 {
		return
	}
	bg := context.WithoutCancel(ctx)
	s.runner.Go(func() {
		if !s.remote.IsAvailable(bg) {
			s.logger.Debug("remote unavailable, skipping save", "key", s.keys.Collection)
			return
		}
		s.remoteMu.Lock()
		defer s.remoteMu.Unlock()
		if _, err := s.finishPurge(bg); err != nil {
			s.logger.Warn("pending delete-all failed, skipping save", "key", s.keys.Collection, "error", err)
			return
		}
		res, err := s.remote.SaveBatch(bg, snapshot)
		if err != nil {
			s.logger.Error("remote save failed", "key", s.keys.Collection, "error", err)
			return
		}
		for _, f := range res.Failures {
			s.logger.Warn("remote save record failed", "key", s.keys.Collection, "id", f.ID, "error", f.Err)
		}
		s.logger.Debug("remote save complete", "key", s.keys.Collection, "saved", len(res.Saved), "roundTrips", res.RoundTrips)
	})
}

func (s *Store[T]) scheduleRemoteDelete(ctx context.Context, ids []string) {
	if s.remote == nil || len(ids) == 0 {
		return
	}
	bg := context.WithoutCancel(ctx)
	s.runner.Go(func() {
		if !s.remote.IsAvailable(bg) {
			return
		}
		s.remoteMu.Lock()
		defer s.remoteMu.Unlock()
		if purged, err := s.finishPurge(bg); err != nil || purged {
			if err != nil {
				s.logger.Warn("pending delete-all failed, skipping delete", "key", s.keys.Collection, "error", err)
			}
			return
		}
		for _, id := range ids {
			if err := s.remote.Delete(bg, id); err != nil {
				s.logger.Error("remote delete failed", "key", s.keys.Collection, "id", id, "error", err)
			}
		}
	})
}

func (s *Store[T]) writeLocal(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.keys.Collection, err)
	}
	if err := s.local.Write(s.keys.Collection, data); err != nil {
		return fmt.Errorf("writing %s: %w", s.keys.Collection, err)
	}
	if s.keys.Shared {
		if err := s.notifier.ReloadAll(); err != nil {
			s.logger.Warn("reload broadcast failed", "key", s.keys.Collection, "error", err)
		}
	}
	return nil
}

// readLocal decodes the cached collection. Missing or corrupt data reads as
// an empty collection.
func (s *Store[T]) readLocal() []T {
	items, err := DecodeCollection[T](s.local, s.keys.Collection)
	if err != nil {
		s.logger.Warn("local cache unreadable, starting empty", "key", s.keys.Collection, "error", err)
		return []T{}
	}
	return items
}

func (s *Store[T]) readIndex(n int) int {
	if s.keys.Index == "" {
		return 0
	}
	i, err := ReadIndex(s.local, s.keys.Index)
	if err != nil {
		s.logger.Warn("cursor unreadable", "key", s.keys.Index, "error", err)
		return 0
	}
	if i < 0 || i >= n {
		return 0
	}
	return i
}

func (s *Store[T]) writeIndex(i int) error {
	if s.keys.Index == "" {
		return nil
	}
	return WriteIndex(s.local, s.keys.Index, i)
}

// DecodeCollection reads a JSON array of records from key. A missing key is
// an empty collection.
func DecodeCollection[T Record[T]](local LocalStore, key string) ([]T, error) {
	data, err := local.Read(key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// SortByDateDesc orders records newest first. Ties keep their relative order.
func SortByDateDesc[T Record[T]](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Created().After(items[j].Created())
	})
}

// ReadIndex reads a decimal cursor. A missing key reads as 0.
func ReadIndex(local LocalStore, key string) (int, error) {
	data, err := local.Read(key)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", key, err)
	}
	if len(data) == 0 {
		return 0, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return i, nil
}

// WriteIndex stores a cursor as decimal text.
func WriteIndex(local LocalStore, key string, i int) error {
	if err := local.Write(key, []byte(strconv.Itoa(i))); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
