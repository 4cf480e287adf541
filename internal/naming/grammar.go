package naming

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultPrefix tags every project created by cienv.
	DefaultPrefix = "cicontainer"

	// DefaultDivider separates the codename from the creation timestamp.
	// It never appears in a generated codename.
	DefaultDivider = "zzdivzz"

	// GrammarVersion identifies the canonical naming grammar:
	//
	//	<prefix><codename><divider><unix>-<nonce>[<sep><suffix>]
	//
	// where <sep> is "_" (compose v1) or "-" (compose v2) and <suffix> is
	// whatever the runtime appends (service name, replica number, "default"
	// for networks).
	GrammarVersion = 1

	nonceLength = 8
)

var tokenPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// MalformedNameError is returned when a resource name does not conform to
// the grammar.
type MalformedNameError struct {
	Name   string
	Reason string
}

func (e *MalformedNameError) Error() string {
	return fmt.Sprintf("malformed resource name %q: %s", e.Name, e.Reason)
}

// Name is a decoded resource name.
type Name struct {
	// OwnerKey is the compose project the resource belongs to.
	OwnerKey      string
	Codename      string
	CreatedAtUnix int64
	Nonce         string

	// Suffix is the runtime-appended tail, without its leading separator.
	// Empty for the project key itself.
	Suffix string
}

// Grammar encodes and decodes resource names.
type Grammar struct {
	prefix  string
	divider string
	re      *regexp.Regexp
}

// NewGrammar builds a grammar for the given prefix tag and divider.
// Both must be non-empty lowercase alphanumeric tokens.
func NewGrammar(prefix, divider string) (*Grammar, error) {
	if !tokenPattern.MatchString(prefix) {
		return nil, fmt.Errorf("invalid name prefix %q: must be lowercase alphanumeric", prefix)
	}
	if !tokenPattern.MatchString(divider) {
		return nil, fmt.Errorf("invalid name divider %q: must be lowercase alphanumeric", divider)
	}
	if strings.Contains(prefix, divider) {
		return nil, errors.New("name prefix must not contain the divider")
	}

	re, err := regexp.Compile(fmt.Sprintf(
		`^(%s([a-z]+?)%s([0-9]+)-([0-9a-f]{%d}))(?:[-_](.+))?$`,
		regexp.QuoteMeta(prefix), regexp.QuoteMeta(divider), nonceLength,
	))
	if err != nil {
		return nil, fmt.Errorf("compiling name grammar: %w", err)
	}

	return &Grammar{prefix: prefix, divider: divider, re: re}, nil
}

// DefaultGrammar returns the grammar with DefaultPrefix and DefaultDivider.
func DefaultGrammar() *Grammar {
	g, err := NewGrammar(DefaultPrefix, DefaultDivider)
	if err != nil {
		panic(err)
	}
	return g
}

// Prefix returns the prefix tag.
func (g *Grammar) Prefix() string { return g.prefix }

// Divider returns the divider sentinel.
func (g *Grammar) Divider() string { return g.divider }

// Encode renders the project key for an identity.
func (g *Grammar) Encode(codename string, createdAtUnix int64, nonce string) string {
	return fmt.Sprintf("%s%s%s%d-%s", g.prefix, codename, g.divider, createdAtUnix, nonce)
}

// Matches reports whether name carries this system's prefix tag and divider.
// Only matching names should be handed to Decode.
func (g *Grammar) Matches(name string) bool {
	name = strings.TrimPrefix(name, "/")
	return strings.HasPrefix(name, g.prefix) && strings.Contains(name, g.divider)
}

// Decode parses a resource name. Docker's leading slash is tolerated.
func (g *Grammar) Decode(name string) (Name, error) {
	trimmed := strings.TrimPrefix(name, "/")
	m := g.re.FindStringSubmatch(trimmed)
	if m == nil {
		return Name{}, &MalformedNameError{Name: name, Reason: "does not match naming grammar v" + strconv.Itoa(GrammarVersion)}
	}

	ts, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return Name{}, &MalformedNameError{Name: name, Reason: "timestamp out of range"}
	}

	return Name{
		OwnerKey:      m[1],
		Codename:      m[2],
		CreatedAtUnix: ts,
		Nonce:         m[4],
		Suffix:        m[5],
	}, nil
}

// DecodeTimestamp returns the creation time embedded in name.
func (g *Grammar) DecodeTimestamp(name string) (int64, error) {
	n, err := g.Decode(name)
	if err != nil {
		return 0, err
	}
	return n.CreatedAtUnix, nil
}

// DecodeOwnerKey returns the project key embedded in name.
func (g *Grammar) DecodeOwnerKey(name string) (string, error) {
	n, err := g.Decode(name)
	if err != nil {
		return "", err
	}
	return n.OwnerKey, nil
}
