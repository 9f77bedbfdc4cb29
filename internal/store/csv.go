package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// CSVBackend stores rows in a local CSV file with a header line.
type CSVBackend struct {
	mu   sync.Mutex
	path string
}

// NewCSVBackend creates the file with the header row if it does not exist.
func NewCSVBackend(path string) (*CSVBackend, error) {
	b := &CSVBackend{path: path}
	if _, err := os.Stat(path); err == nil {
		return b, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create dir for %s: %w", path, err)
		}
	}
	if err := b.write(os.O_CREATE|os.O_WRONLY|os.O_EXCL, Header); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *CSVBackend) Identities(_ context.Context) ([]Identity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.Open(b.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", b.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	nameCol, emailCol := -1, -1
	for i, h := range header {
		switch h {
		case "Name":
			nameCol = i
		case "Email":
			emailCol = i
		}
	}
	if nameCol < 0 || emailCol < 0 {
		return nil, fmt.Errorf("%s: header lacks Name/Email columns", b.path)
	}

	var ids []Identity
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", b.path, err)
		}
		var id Identity
		if nameCol < len(rec) {
			id.Name = rec[nameCol]
		}
		if emailCol < len(rec) {
			id.Email = rec[emailCol]
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (b *CSVBackend) Append(_ context.Context, row []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.write(os.O_APPEND|os.O_WRONLY, row)
}

func (b *CSVBackend) write(flag int, row []string) error {
	f, err := os.OpenFile(b.path, flag, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", b.path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", b.path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", b.path, err)
	}
	return f.Close()
}
