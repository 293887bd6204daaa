package archive

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/depsentry/depsentry/domain"
)

// originFile holds the source the archive was fetched from. It sits at the
// archive root and is excluded from the repository listing.
const originFile = ".depsentry-origin"

// Store is a filesystem-backed archive of submitted repositories. Each
// analysis occupies one directory under the workspace root, named by its
// analysis ID.
type Store struct {
	root   string
	maxAge time.Duration
}

// NewStore creates a store over the given workspace directory. maxAge limits
// how long an archived repository stays readable; zero disables expiry.
func NewStore(root string, maxAge time.Duration) *Store {
	return &Store{root: root, maxAge: maxAge}
}

// GetFile returns the raw bytes of a file inside an analysis archive.
func (s *Store) GetFile(_ context.Context, analysisID, path string) ([]byte, error) {
	dir, err := s.archiveDir(analysisID)
	if err != nil {
		return nil, err
	}

	rel := filepath.Clean(filepath.FromSlash(path))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: path %q escapes the archive", domain.ErrArchiveCorrupt, path)
	}

	content, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrArchiveCorrupt, path, err)
	}
	return content, nil
}

// GetRepoMeta walks the analysis archive and returns its file listing with
// forward-slash, archive-relative paths.
func (s *Store) GetRepoMeta(_ context.Context, analysisID string) (*domain.RepoMeta, error) {
	dir, err := s.archiveDir(analysisID)
	if err != nil {
		return nil, err
	}

	meta := &domain.RepoMeta{RepoName: analysisID, Root: dir}
	if origin, readErr := os.ReadFile(filepath.Join(dir, originFile)); readErr == nil {
		if name := repoNameFromSource(strings.TrimSpace(string(origin))); name != "" {
			meta.RepoName = name
		}
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		if rel == originFile {
			return nil
		}
		meta.Files = append(meta.Files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArchiveCorrupt, err)
	}
	return meta, nil
}

// archiveDir resolves and validates the directory backing an analysis.
func (s *Store) archiveDir(analysisID string) (string, error) {
	if strings.ContainsAny(analysisID, `/\`) {
		return "", fmt.Errorf("%w: invalid analysis id %q", domain.ErrArchiveNotReady, analysisID)
	}

	dir := filepath.Join(s.root, analysisID)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", domain.ErrArchiveNotReady, analysisID)
	}
	if s.maxAge > 0 && time.Since(info.ModTime()) > s.maxAge {
		return "", fmt.Errorf("%w: %s expired", domain.ErrArchiveNotReady, analysisID)
	}
	return dir, nil
}
