package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DiskStore implements persistent disk-based checkpoints, one JSON file
// per claim ID
type DiskStore struct {
	dir string
}

// NewDiskStore creates a new disk store rooted at dir
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Get retrieves the checkpoint for a claim
func (s *DiskStore) Get(claimID string) (Record, bool) {
	data, err := os.ReadFile(s.path(claimID))
	if err != nil {
		return Record{}, false
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false
	}

	return rec, true
}

// Put stores the checkpoint for a claim. The write goes through a temp
// file and rename so a crash mid-write never leaves a torn record.
func (s *DiskStore) Put(claimID string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	path := s.path(claimID)
	tmp, err := os.CreateTemp(s.dir, fileKey(claimID)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close checkpoint: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit checkpoint: %w", err)
	}

	return nil
}

// Delete removes the checkpoint for a claim
func (s *DiskStore) Delete(claimID string) error {
	err := os.Remove(s.path(claimID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// path generates the file path for a claim's checkpoint
func (s *DiskStore) path(claimID string) string {
	return filepath.Join(s.dir, fileKey(claimID)+".json")
}
