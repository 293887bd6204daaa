package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Version ordering is intentionally approximate: each ecosystem gets a narrow
// comparator that handles the versions real lockfiles pin, instead of a fully
// spec-compliant SemVer/PEP 440 implementation. Pre-release and build-metadata
// segments are ignored.

var semverTriple = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)`)

// CompareVersions reports whether a is newer than b under the given
// ecosystem's ordering.
func CompareVersions(eco Ecosystem, a, b string) bool {
	if eco == EcosystemPyPI {
		return pypiNewer(a, b)
	}
	return npmNewer(a, b)
}

// npmNewer compares leading major.minor.patch triples. When either side does
// not look like a semver triple the comparison degrades to lexical order.
func npmNewer(a, b string) bool {
	ma := semverTriple.FindStringSubmatch(a)
	mb := semverTriple.FindStringSubmatch(b)
	if ma == nil || mb == nil {
		return a > b
	}
	for i := 1; i <= 3; i++ {
		na, _ := strconv.Atoi(ma[i])
		nb, _ := strconv.Atoi(mb[i])
		if na != nb {
			return na > nb
		}
	}
	return false
}

var nonDigits = regexp.MustCompile(`[^0-9]+`)

// pypiNewer splits both versions on runs of non-digit characters, zero-pads
// the shorter sequence and compares element-wise.
func pypiNewer(a, b string) bool {
	pa := numericParts(a)
	pb := numericParts(b)
	for len(pa) < len(pb) {
		pa = append(pa, 0)
	}
	for len(pb) < len(pa) {
		pb = append(pb, 0)
	}
	for i := range pa {
		if pa[i] != pb[i] {
			return pa[i] > pb[i]
		}
	}
	return false
}

func numericParts(v string) []int {
	var parts []int
	for _, p := range nonDigits.Split(strings.TrimSpace(v), -1) {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		parts = append(parts, n)
	}
	return parts
}

// ValidVersion reports whether the comparator for the given ecosystem can
// extract an ordering from the string at all.
func ValidVersion(eco Ecosystem, v string) bool {
	if eco == EcosystemPyPI {
		return len(numericParts(v)) > 0
	}
	return semverTriple.MatchString(v)
}
