package homie

import (
	"errors"
	"fmt"
	"regexp"
)

// Identifier constraints from the Homie v5 convention.
const (
	maxIDLength = 64
	idPattern   = `^[a-z0-9]+(?:-[a-z0-9]+)*$`
)

var idRegex = regexp.MustCompile(idPattern)

var (
	// ErrInvalidID is returned when an identifier violates the protocol
	// character or length constraints.
	ErrInvalidID = errors.New("homie: invalid identifier")

	// ErrInvalidDomain is returned when a domain violates the protocol
	// character or length constraints.
	ErrInvalidDomain = errors.New("homie: invalid domain")
)

// ID is a validated Homie identifier (device, node, property or alert id).
//
// Valid identifiers are 1-64 characters of lowercase a-z, 0-9 and single
// hyphens, neither starting nor ending with a hyphen. IDs are immutable
// once constructed via NewID.
type ID string

// NewID validates s and returns it as an ID.
func NewID(s string) (ID, error) {
	if len(s) == 0 || len(s) > maxIDLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if !idRegex.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID(s), nil
}

// MustID is like NewID but panics on invalid input.
// Intended for constants and tests.
func MustID(s string) ID {
	id, err := NewID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) String() string { return string(id) }

// Domain is the namespace partitioning the device address space.
// It forms the first segment of every Homie topic.
type Domain string

const (
	// DefaultDomain is the conventional Homie domain.
	DefaultDomain Domain = "homie"

	// AllDomains is the reserved wildcard domain. It is only meaningful in
	// queries, where it matches every domain; it is never a valid topic
	// segment for a concrete device.
	AllDomains Domain = "+"
)

// NewDomain validates s and returns it as a Domain. The wildcard AllDomains
// is accepted as-is.
func NewDomain(s string) (Domain, error) {
	if Domain(s) == AllDomains {
		return AllDomains, nil
	}
	if len(s) == 0 || len(s) > maxIDLength || !idRegex.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, s)
	}
	return Domain(s), nil
}

func (d Domain) String() string { return string(d) }

// IsWildcard reports whether the domain is the reserved match-all value.
func (d Domain) IsWildcard() bool { return d == AllDomains }
