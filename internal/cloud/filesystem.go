package cloud

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nts-go/internal/model"
	"nts-go/internal/nts"
)

// FileSystemDatabase stores each record as a file:
//
//	<root>/
//	  <recordType>/
//	    <recordName>.json
//
// It stands in for the remote service when the "remote" is a synced folder.
type FileSystemDatabase struct {
	root    string
	payload *Payload
}

// NewFileSystemDatabase creates root if needed.
func NewFileSystemDatabase(root string, payload *Payload) (*FileSystemDatabase, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create remote root: %w", err)
	}
	return &FileSystemDatabase{root: root, payload: payload}, nil
}

// AccountStatus checks that the root is a writable directory.
func (d *FileSystemDatabase) AccountStatus(ctx context.Context) error {
	info, err := os.Stat(d.root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrUnavailable, d.root)
	}
	probe, err := os.CreateTemp(d.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("%w: root not writable: %w", ErrUnavailable, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

func (d *FileSystemDatabase) Query(ctx context.Context, recordType string) ([]QueryResult, error) {
	dir := filepath.Join(d.root, recordType)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", recordType, err)
	}

	var out []QueryResult
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		res := QueryResult{Name: name}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			res.Err = fmt.Errorf("reading record: %w", err)
		} else {
			res.Record, res.Err = d.payload.Unmarshal(data)
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *FileSystemDatabase) Modify(ctx context.Context, records []model.WireRecord) ([]RecordError, error) {
	if len(records) > nts.MaxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds limit of %d", len(records), nts.MaxBatchSize)
	}

	var failed []RecordError
	for _, rec := range records {
		if err := d.put(rec); err != nil {
			failed = append(failed, RecordError{Name: rec.Name, Err: err})
		}
	}
	return failed, nil
}

func (d *FileSystemDatabase) put(rec model.WireRecord) error {
	p, err := d.recordPath(rec.Type, rec.Name)
	if err != nil {
		return err
	}
	data, err := d.payload.Marshal(rec)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("creating %s directory: %w", rec.Type, err)
	}
	return writeFileAtomic(p, data)
}

func (d *FileSystemDatabase) Delete(ctx context.Context, recordType string, names []string) ([]RecordError, error) {
	var failed []RecordError
	for _, name := range names {
		p, err := d.recordPath(recordType, name)
		if err == nil {
			err = os.Remove(p)
			if os.IsNotExist(err) {
				err = nil
			}
		}
		if err != nil {
			failed = append(failed, RecordError{Name: name, Err: err})
		}
	}
	return failed, nil
}

func (d *FileSystemDatabase) recordPath(recordType, name string) (string, error) {
	for _, part := range []string{recordType, name} {
		if part == "" || strings.ContainsAny(part, `/\`) || strings.HasPrefix(part, ".") {
			return "", fmt.Errorf("invalid record path component %q", part)
		}
	}
	return filepath.Join(d.root, recordType, name+".json"), nil
}

// writeFileAtomic writes data to destPath using a temp file + rename.
func writeFileAtomic(destPath string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemDatabase implements Database
var _ Database = (*FileSystemDatabase)(nil)
