package domain

import "context"

// ArchiveStore abstracts the storage holding the submitted repository's
// files for the lifetime of an analysis.
type ArchiveStore interface {
	// GetFile returns the raw bytes of a file inside an analysis archive.
	// It fails with ErrArchiveNotReady when the archive is absent or expired
	// and with ErrArchiveCorrupt when the file cannot be read.
	GetFile(ctx context.Context, analysisID, path string) ([]byte, error)
}

// RepoIndex abstracts the file listing of a submitted repository.
type RepoIndex interface {
	// GetRepoMeta returns the repository name, its common path prefix, and
	// the list of file paths known for the analysis.
	GetRepoMeta(ctx context.Context, analysisID string) (*RepoMeta, error)
}
