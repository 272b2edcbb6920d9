package cloud

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"nts-go/internal/model"
	"nts-go/internal/nts"
)

// MemoryDatabase is an in-memory Database, useful for testing. It counts
// round-trips and supports injected failures.
// This implementation is safe for concurrent use.
type MemoryDatabase struct {
	mu      sync.Mutex
	records map[string]map[string]model.WireRecord // recordType -> name -> record

	statusErr    error
	queryErr     error
	modifyErr    error
	recordErrs   map[string]error
	chunkSizes   []int
	statusCalls  int
	deleteLimit  int // fail after this many deleted names; 0 = unlimited
	deletedSoFar int
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		records:    make(map[string]map[string]model.WireRecord),
		recordErrs: make(map[string]error),
	}
}

func (m *MemoryDatabase) AccountStatus(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls++
	return m.statusErr
}

func (m *MemoryDatabase) Query(ctx context.Context, recordType string) ([]QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.queryErr != nil {
		return nil, m.queryErr
	}
	names := make([]string, 0, len(m.records[recordType]))
	for name := range m.records[recordType] {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]QueryResult, 0, len(names))
	for _, name := range names {
		out = append(out, QueryResult{Name: name, Record: cloneWire(m.records[recordType][name])})
	}
	return out, nil
}

func (m *MemoryDatabase) Modify(ctx context.Context, records []model.WireRecord) ([]RecordError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(records) > nts.MaxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds limit of %d", len(records), nts.MaxBatchSize)
	}
	m.chunkSizes = append(m.chunkSizes, len(records))
	if m.modifyErr != nil {
		return nil, m.modifyErr
	}

	var failed []RecordError
	for _, rec := range records {
		if err, ok := m.recordErrs[rec.Name]; ok {
			failed = append(failed, RecordError{Name: rec.Name, Err: err})
			continue
		}
		if m.records[rec.Type] == nil {
			m.records[rec.Type] = make(map[string]model.WireRecord)
		}
		m.records[rec.Type][rec.Name] = cloneWire(rec)
	}
	return failed, nil
}

func (m *MemoryDatabase) Delete(ctx context.Context, recordType string, names []string) ([]RecordError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var failed []RecordError
	for _, name := range names {
		if m.deleteLimit > 0 && m.deletedSoFar >= m.deleteLimit {
			failed = append(failed, RecordError{Name: name, Err: fmt.Errorf("delete interrupted")})
			continue
		}
		if _, ok := m.records[recordType][name]; ok {
			delete(m.records[recordType], name)
			m.deletedSoFar++
		}
	}
	return failed, nil
}

// SetStatus makes AccountStatus return err. nil makes the remote available.
func (m *MemoryDatabase) SetStatus(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusErr = err
}

// FailQuery makes every Query return err.
func (m *MemoryDatabase) FailQuery(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErr = err
}

// FailModify makes every Modify call fail as a whole.
func (m *MemoryDatabase) FailModify(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modifyErr = err
}

// FailRecord makes saves of the named record fail.
func (m *MemoryDatabase) FailRecord(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrs[name] = err
}

// InterruptDeletesAfter makes deletes fail once n records have been removed.
func (m *MemoryDatabase) InterruptDeletesAfter(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLimit = n
	m.deletedSoFar = 0
}

// Put stores a record directly, bypassing batching and failure injection.
func (m *MemoryDatabase) Put(rec model.WireRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records[rec.Type] == nil {
		m.records[rec.Type] = make(map[string]model.WireRecord)
	}
	m.records[rec.Type][rec.Name] = cloneWire(rec)
}

// Count returns the number of stored records of recordType.
func (m *MemoryDatabase) Count(recordType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records[recordType])
}

// ChunkSizes returns the size of every Modify call made so far.
func (m *MemoryDatabase) ChunkSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.chunkSizes))
	copy(out, m.chunkSizes)
	return out
}

// RoundTrips returns the number of Modify calls made so far.
func (m *MemoryDatabase) RoundTrips() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunkSizes)
}

// StatusCalls returns the number of AccountStatus probes made so far.
func (m *MemoryDatabase) StatusCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls
}

func cloneWire(r model.WireRecord) model.WireRecord {
	out := model.NewWireRecord(r.Type, r.Name)
	for k, v := range r.Fields {
		if v.List != nil {
			l := make([]string, len(v.List))
			copy(l, v.List)
			v.List = l
		}
		out.Fields[k] = v
	}
	return out
}

// Compile-time check that MemoryDatabase implements Database
var _ Database = (*MemoryDatabase)(nil)
