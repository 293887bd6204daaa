package domain

// ManifestParser abstracts one supported lockfile format. Parsers are
// fail-open: lockfiles are often hand-edited or partially generated, so a
// malformed manifest degrades to fewer dependencies, never to an error.
type ManifestParser interface {
	// Name returns the format identifier (e.g. "package-lock.json").
	Name() string

	// Matches reports whether the given base filename is this parser's format.
	Matches(filename string) bool

	// Parse extracts exactly-pinned dependencies from raw manifest text.
	Parse(path string, content []byte) ParseOutput
}
