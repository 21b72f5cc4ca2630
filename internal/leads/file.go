package leads

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// FileStore appends leads to a local file, one JSON object per line. A
// single mutex serialises writers; the append is flushed and synced before
// Save returns, so an accepted lead survives a crash.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store writing to path. The file is created on first
// save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save appends the lead as one JSON line. CapturedAt is stamped when the
// caller left it zero, matching the Postgres store's column default.
func (s *FileStore) Save(ctx context.Context, lead *Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if lead.CapturedAt.IsZero() {
		lead.CapturedAt = time.Now().UTC()
	}

	line, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("leads: encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("leads: open %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("leads: write: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("leads: sync: %w", err)
	}
	return nil
}

// All reads every stored lead in capture order. Corrupt lines abort the read;
// the file is append-only JSON lines, so a parse failure means real damage.
func (s *FileStore) All() ([]Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("leads: open %s: %w", s.path, err)
	}
	defer f.Close()

	var out []Lead
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var l Lead
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			return nil, fmt.Errorf("leads: decode line %d: %w", len(out)+1, err)
		}
		out = append(out, l)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("leads: read: %w", err)
	}
	return out, nil
}
