package testutil

import (
	"fmt"
	"sync"
	"time"

	"nts-go/internal/nts"
)

var (
	_ nts.Clock       = (*StubClock)(nil)
	_ nts.IDGenerator = (*StubIDGenerator)(nil)
)

// StubClock stamps records with a time the test controls. Records added
// without an Advance in between share a timestamp, which is how tests
// produce lastModified ties. Safe for concurrent use.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewStubClock creates a StubClock set to the given time.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// StubIDGenerator hands out StubID(1), StubID(2), ... so tests can name
// the id a store will assign before calling Add.
type StubIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return StubID(g.counter)
}

// StubID returns the n-th ID a StubIDGenerator produces.
func StubID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}
