package naming

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// ErrInvalidIdentityFormat is returned by FromSlug when the slug cannot be parsed.
var ErrInvalidIdentityFormat = errors.New("invalid identity format")

// Identity names one ephemeral environment. The Slug doubles as the compose
// project name, so every runtime resource of the environment embeds it.
type Identity struct {
	Slug          string
	Codename      string
	CreatedAtUnix int64
	Nonce         string
}

// CreatedAt returns the creation time as a time.Time.
func (i Identity) CreatedAt() time.Time {
	return time.Unix(i.CreatedAtUnix, 0)
}

func (i Identity) String() string { return i.Slug }

// DisplayName renders the codename with its two words separated, e.g.
// "brave hopper". Codenames not built from the word lists come back as is.
func (i Identity) DisplayName() string {
	for _, adj := range adjectives {
		rest, ok := strings.CutPrefix(i.Codename, adj)
		if ok && isSurname(rest) {
			return adj + " " + rest
		}
	}
	return i.Codename
}

func isSurname(s string) bool {
	for _, n := range surnames {
		if n == s {
			return true
		}
	}
	return false
}

// Generator produces identities.
type Generator struct {
	grammar *Grammar
	clock   clock.Clock
}

// NewGenerator returns a Generator. A nil clock means the wall clock.
func NewGenerator(g *Grammar, clk clock.Clock) *Generator {
	if g == nil {
		g = DefaultGrammar()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Generator{grammar: g, clock: clk}
}

// Grammar returns the grammar used to encode slugs.
func (g *Generator) Grammar() *Grammar { return g.grammar }

// Generate returns a fresh identity: a two-word codename, the current unix
// time and a random nonce.
func (g *Generator) Generate() Identity {
	codename := RandomCodename()
	ts := g.clock.Now().Unix()
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")[:nonceLength]

	return Identity{
		Slug:          g.grammar.Encode(codename, ts, nonce),
		Codename:      codename,
		CreatedAtUnix: ts,
		Nonce:         nonce,
	}
}

// FromSlug recovers the identity of an existing environment so another
// provisioning call can join it.
func (g *Generator) FromSlug(slug string) (Identity, error) {
	n, err := g.grammar.Decode(slug)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidIdentityFormat, err)
	}
	if n.Suffix != "" {
		return Identity{}, fmt.Errorf("%w: %q is a resource name, not an environment slug", ErrInvalidIdentityFormat, slug)
	}
	return Identity{
		Slug:          n.OwnerKey,
		Codename:      n.Codename,
		CreatedAtUnix: n.CreatedAtUnix,
		Nonce:         n.Nonce,
	}, nil
}

// RandomCodename returns an adjective and a surname joined without a
// separator, e.g. "bravehopper". math/rand/v2 is seeded per process.
func RandomCodename() string {
	return adjectives[rand.IntN(len(adjectives))] + surnames[rand.IntN(len(surnames))]
}
