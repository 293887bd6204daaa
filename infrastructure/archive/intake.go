package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"
)

// Intake fetches a repository into the archive workspace so that scans can
// read its files. Sources may be remote clone URLs or local paths; both go
// through a shallow git clone.
type Intake struct {
	root string
}

// NewIntake creates an intake writing into the same workspace a Store reads.
func NewIntake(root string) *Intake {
	return &Intake{root: root}
}

// Fetch clones the source and returns the analysis ID under which the
// snapshot is archived. Fetching the same source again replaces the
// previous snapshot.
func (i *Intake) Fetch(ctx context.Context, source string) (string, error) {
	analysisID := AnalysisIDForSource(source)
	dest := filepath.Join(i.root, analysisID)

	if err := os.RemoveAll(dest); err != nil {
		return "", fmt.Errorf("failed to clear previous snapshot: %w", err)
	}
	if err := os.MkdirAll(i.root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}

	logger.Infof("[intake] cloning %s as %s", source, analysisID)
	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:          source,
		Depth:        1,
		SingleBranch: true,
	})
	if err != nil {
		_ = os.RemoveAll(dest)
		return "", fmt.Errorf("failed to clone %q: %w", source, err)
	}

	marker := filepath.Join(dest, originFile)
	if err := os.WriteFile(marker, []byte(source+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to record origin: %w", err)
	}
	return analysisID, nil
}

// AnalysisIDForSource derives the deterministic analysis ID for a source:
// the repository name plus a short digest of the full source string, so two
// repositories with the same name archive separately.
func AnalysisIDForSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	name := repoNameFromSource(source)
	if name == "" {
		name = "repo"
	}
	return name + "-" + hex.EncodeToString(sum[:4])
}

// repoNameFromSource extracts the repository name from a clone URL or path.
func repoNameFromSource(source string) string {
	trimmed := strings.TrimRight(strings.TrimSuffix(strings.TrimSpace(source), ".git"), "/")
	trimmed = strings.ReplaceAll(trimmed, "\\", "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if idx := strings.LastIndex(trimmed, ":"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return trimmed
}
