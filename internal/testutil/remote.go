package testutil

import (
	"context"
	"sync"

	"nts-go/internal/nts"
)

// FakeRemote is an in-memory RemoteStore that counts every call. It keeps
// records in insertion order and does not chunk batches.
type FakeRemote[T nts.Record[T]] struct {
	mu        sync.Mutex
	records   map[string]T
	order     []string
	available bool
	fetchErr  error
	saveErr   error
	deleteErr error
	calls     map[string]int
}

// NewFakeRemote returns an available, empty remote.
func NewFakeRemote[T nts.Record[T]]() *FakeRemote[T] {
	return &FakeRemote[T]{
		records:   make(map[string]T),
		available: true,
		calls:     make(map[string]int),
	}
}

func (r *FakeRemote[T]) IsAvailable(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["IsAvailable"]++
	return r.available
}

func (r *FakeRemote[T]) FetchAll(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["FetchAll"]++
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	nts.SortByDateDesc(out)
	return out, nil
}

func (r *FakeRemote[T]) Save(ctx context.Context, rec T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["Save"]++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.putLocked(rec)
	return nil
}

func (r *FakeRemote[T]) SaveBatch(ctx context.Context, recs []T) (nts.BatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["SaveBatch"]++
	res := nts.BatchResult{RoundTrips: 1}
	for _, rec := range recs {
		if r.saveErr != nil {
			res.Failures = append(res.Failures, nts.BatchFailure{ID: rec.RecordID(), Err: r.saveErr})
			continue
		}
		r.putLocked(rec)
		res.Saved = append(res.Saved, rec.RecordID())
	}
	return res, nil
}

func (r *FakeRemote[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["Delete"]++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.removeLocked(id)
	return nil
}

func (r *FakeRemote[T]) DeleteAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["DeleteAll"]++
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	n := len(r.order)
	r.records = make(map[string]T)
	r.order = nil
	return n, nil
}

func (r *FakeRemote[T]) putLocked(rec T) {
	if _, ok := r.records[rec.RecordID()]; !ok {
		r.order = append(r.order, rec.RecordID())
	}
	r.records[rec.RecordID()] = rec
}

func (r *FakeRemote[T]) removeLocked(id string) {
	if _, ok := r.records[id]; !ok {
		return
	}
	delete(r.records, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Put stores records directly without counting a call.
func (r *FakeRemote[T]) Put(recs ...T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range recs {
		r.putLocked(rec)
	}
}

// Get returns the stored record with id.
func (r *FakeRemote[T]) Get(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	return rec, ok
}

// Len returns the number of stored records.
func (r *FakeRemote[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

func (r *FakeRemote[T]) SetAvailable(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.available = v
}

func (r *FakeRemote[T]) FailFetch(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchErr = err
}

func (r *FakeRemote[T]) FailSave(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

func (r *FakeRemote[T]) FailDelete(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteErr = err
}

// Calls returns how many times method was invoked.
func (r *FakeRemote[T]) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// TotalCalls returns the number of calls to any method.
func (r *FakeRemote[T]) TotalCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}
