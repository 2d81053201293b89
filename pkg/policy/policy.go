// Package policy decides whether the findings of a report must fail the build.
package policy

import (
	"fmt"
	"sort"
	"strings"
)

// FailCategory is a class of findings that can fail the build.
type FailCategory int

const (
	Dependencies FailCategory = iota
	LicensesUnknown
	Licenses
	Security
)

var categoryNames = map[FailCategory]string{
	Dependencies:    "dependencies",
	LicensesUnknown: "licensesUnknown",
	Licenses:        "licenses",
	Security:        "security",
}

func (c FailCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("FailCategory(%d)", int(c))
}

// ParseCategory accepts the short names ("security") and the legacy check names ("securityCheck").
func ParseCategory(s string) (FailCategory, error) {
	name := strings.TrimSuffix(strings.TrimSpace(s), "Check")
	for c, n := range categoryNames {
		if strings.EqualFold(n, name) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown fail category %q", s)
}

// FailSet is an immutable set of categories. The zero value is the empty set.
type FailSet struct {
	m map[FailCategory]struct{}
}

// NewFailSet builds a set from the given categories.
func NewFailSet(categories ...FailCategory) FailSet {
	m := make(map[FailCategory]struct{}, len(categories))
	for _, c := range categories {
		m[c] = struct{}{}
	}
	return FailSet{m: m}
}

// DefaultFailSet fails on security vulnerabilities only.
func DefaultFailSet() FailSet {
	return NewFailSet(Security)
}

// ParseFailSet parses category names. An empty list gives the empty (report-only) set.
func ParseFailSet(names []string) (FailSet, error) {
	categories := make([]FailCategory, 0, len(names))
	for _, n := range names {
		c, err := ParseCategory(n)
		if err != nil {
			return FailSet{}, err
		}
		categories = append(categories, c)
	}
	return NewFailSet(categories...), nil
}

// Contains reports whether c is in the set.
func (s FailSet) Contains(c FailCategory) bool {
	_, ok := s.m[c]
	return ok
}

// Len returns the number of categories in the set.
func (s FailSet) Len() int {
	return len(s.m)
}

// Categories returns the members in declaration order.
func (s FailSet) Categories() []FailCategory {
	out := make([]FailCategory, 0, len(s.m))
	for c := range s.m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s FailSet) String() string {
	names := make([]string, 0, len(s.m))
	for _, c := range s.Categories() {
		names = append(names, c.String())
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Counts are the aggregate numbers the policy looks at.
type Counts struct {
	Outdated          int
	LicenseViolations int
	UnknownLicenses   int
	Vulnerabilities   int
}

// Flags holds one predicate per category. The renderer uses the same flags to highlight
// failing lines, so a red line always corresponds to a failing build.
type Flags struct {
	Deps           bool
	License        bool
	UnknownLicense bool
	Security       bool
}

// FlagsFor computes the four fail predicates.
func FlagsFor(c Counts, failOn FailSet) Flags {
	return Flags{
		Deps:           failOn.Contains(Dependencies) && c.Outdated > 0,
		License:        failOn.Contains(Licenses) && c.LicenseViolations > 0,
		UnknownLicense: failOn.Contains(LicensesUnknown) && c.UnknownLicenses > 0,
		Security:       failOn.Contains(Security) && c.Vulnerabilities > 0,
	}
}

// Failed is true when any category fails.
func (f Flags) Failed() bool {
	return f.Deps || f.License || f.UnknownLicense || f.Security
}

// Evaluate returns true when the build must fail.
func Evaluate(c Counts, failOn FailSet) bool {
	return FlagsFor(c, failOn).Failed()
}
