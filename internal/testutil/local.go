package testutil

import (
	"sync"

	"nts-go/internal/nts"
)

// RecordingLocalStore is an in-memory LocalStore that records every write
// and can be made to fail.
type RecordingLocalStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	writes   []string
	writeErr error
}

func NewRecordingLocalStore() *RecordingLocalStore {
	return &RecordingLocalStore{data: make(map[string][]byte)}
}

func (s *RecordingLocalStore) Read(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (s *RecordingLocalStore) Write(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes = append(s.writes, key)
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *RecordingLocalStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Set stores raw bytes without recording a write.
func (s *RecordingLocalStore) Set(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
}

// FailWrites makes every subsequent Write return err. nil restores writes.
func (s *RecordingLocalStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Writes returns the keys written so far, in order.
func (s *RecordingLocalStore) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

// Has reports whether key is present.
func (s *RecordingLocalStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

var _ nts.LocalStore = (*RecordingLocalStore)(nil)

// RecordingNotifier counts reload broadcasts.
type RecordingNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *RecordingNotifier) ReloadAll() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
	return nil
}

// Count returns the number of broadcasts so far.
func (n *RecordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

var _ nts.Notifier = (*RecordingNotifier)(nil)
