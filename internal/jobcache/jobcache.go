// Package jobcache persists the mapping from content-derived dedup keys to
// previously produced artifacts, so identical (source, template) pairs are
// rendered once.
//
// The default FileStore keeps one flat record per key under the output
// directory. RedisStore offers the same contract for deployments where
// several daemon instances share a cache. Entries are never evicted: keys
// are content-derived and bounded by the set of distinct documents seen.
package jobcache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-docforge/internal/fileutil"
)

// Store maps dedup keys to artifact paths. Implementations must be safe
// for concurrent use by the scheduler's worker pool.
type Store interface {
	// Lookup returns the recorded artifact for key. A recorded entry
	// whose artifact no longer exists on disk is a miss, not an error.
	Lookup(ctx context.Context, key string) (artifact string, ok bool)

	// Record associates key with artifact. Last write wins.
	Record(ctx context.Context, key, artifact string) error
}

// recordSuffix marks completed-job records on disk.
const recordSuffix = ".done"

// FileStore is the default Store: one file per key, named by the key,
// containing exactly the artifact path as text.
type FileStore struct {
	dir string
}

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := fileutil.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("preparing cache directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string { return s.dir }

// Lookup reads the record for key and self-heals against external
// deletion: a record pointing at a vanished artifact is a miss.
func (s *FileStore) Lookup(_ context.Context, key string) (string, bool) {
	data, err := os.ReadFile(s.recordPath(key)) // #nosec G304 -- path derived from hex key
	if err != nil {
		return "", false
	}
	artifact := strings.TrimSpace(string(data))
	if artifact == "" || !fileutil.FileExists(artifact) {
		return "", false
	}
	return artifact, true
}

// Record writes the artifact path for key. Concurrent writers for the
// same key carry the same content, so a plain overwrite is sufficient.
func (s *FileStore) Record(_ context.Context, key, artifact string) error {
	if err := os.WriteFile(s.recordPath(key), []byte(artifact), fileutil.FilePerm); err != nil {
		return fmt.Errorf("writing cache record: %w", err)
	}
	return nil
}

// recordPath maps a key to its record file. Digest prefixes like
// "sha256:" carry a colon, which is not portable in filenames.
func (s *FileStore) recordPath(key string) string {
	return filepath.Join(s.dir, strings.ReplaceAll(key, ":", "_")+recordSuffix)
}
