package widget

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nts-go/internal/nts"
)

// SignalName is the file bumped on every reload broadcast.
const SignalName = ".reload"

// FileNotifier broadcasts reloads by rewriting a signal file that companion
// processes watch.
type FileNotifier struct {
	dir   string
	clock nts.Clock
}

// NewFileNotifier creates the signal directory if needed.
func NewFileNotifier(dir string, clock nts.Clock) (*FileNotifier, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating signal directory: %w", err)
	}
	return &FileNotifier{dir: dir, clock: clock}, nil
}

// Path returns the signal file path.
func (n *FileNotifier) Path() string {
	return filepath.Join(n.dir, SignalName)
}

func (n *FileNotifier) ReloadAll() error {
	stamp := n.clock.Now().UTC().Format(time.RFC3339Nano)
	if err := os.WriteFile(n.Path(), []byte(stamp+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing reload signal: %w", err)
	}
	return nil
}

// Compile-time check that FileNotifier implements nts.Notifier
var _ nts.Notifier = (*FileNotifier)(nil)
