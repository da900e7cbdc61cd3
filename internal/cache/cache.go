/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package cache

import (
    "encoding/json"
    "os"
    "path/filepath"
    "time"

    "github.com/digdir/bod-roadmapreport/internal/domain"
)

// Store keeps one snapshot of the issue batch in a JSON file. Freshness is
// the file's mtime measured against a TTL, not anything inside the payload,
// so every write restarts the TTL window.
type Store struct {
    path string
}

func NewStore(path string) *Store {
    return &Store{path: path}
}

// Read returns the cached batch. A missing or malformed file is a cache
// miss, not an error: the caller just sees an empty batch.
func (s *Store) Read() []domain.Issue {
    data, err := os.ReadFile(s.path)
    if err != nil { return nil }
    var issues []domain.Issue
    if err := json.Unmarshal(data, &issues); err != nil { return nil }
    return issues
}

// Write replaces the snapshot as a whole. The payload lands in a temp file
// first and is moved into place, so readers never observe a partial write.
func (s *Store) Write(issues []domain.Issue) error {
    if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil { return err }
    data, err := json.MarshalIndent(issues, "", "  ")
    if err != nil { return err }
    tmp, err := os.CreateTemp(filepath.Dir(s.path), ".snapshot-*.json")
    if err != nil { return err }
    if _, err := tmp.Write(data); err != nil {
        tmp.Close()
        os.Remove(tmp.Name())
        return err
    }
    if err := tmp.Close(); err != nil {
        os.Remove(tmp.Name())
        return err
    }
    return os.Rename(tmp.Name(), s.path)
}

// Fresh reports whether the snapshot exists and is younger than ttl.
func (s *Store) Fresh(ttl time.Duration) bool {
    age, ok := s.age()
    return ok && age < ttl
}

// Age returns the snapshot age, zero if no snapshot exists.
func (s *Store) Age() time.Duration {
    age, _ := s.age()
    return age
}

func (s *Store) age() (time.Duration, bool) {
    fi, err := os.Stat(s.path)
    if err != nil { return 0, false }
    return time.Since(fi.ModTime()), true
}
