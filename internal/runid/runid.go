// Package runid creates and canonicalizes run identities, the tokens that
// key one user's in-progress wizard data.
package runid

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goombaio/namegenerator"
	"github.com/gosimple/slug"
)

// MaxLength bounds a normalized run identity.
const MaxLength = 64

// ErrEmpty is returned when a run identity normalizes to nothing.
var ErrEmpty = errors.New("run identity is empty")

var (
	mu        sync.Mutex
	generator = namegenerator.NewNameGenerator(time.Now().UnixNano())
)

// New returns a fresh human-readable identity such as "silent-sunset".
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return generator.Generate()
}

// NewUnique returns a fresh identity for which taken reports false. After a
// few collisions a numeric suffix is added.
func NewUnique(taken func(string) (bool, error)) (string, error) {
	const attempts = 5
	var candidate string
	for i := range attempts * 2 {
		candidate = New()
		if i >= attempts {
			candidate = fmt.Sprintf("%s-%d", candidate, time.Now().UnixNano()%10000)
		}
		used, err := taken(candidate)
		if err != nil {
			return "", fmt.Errorf("check run identity: %w", err)
		}
		if !used {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free run identity after %d attempts", attempts*2)
}

// Normalize canonicalizes an identity typed back in by a user: lower case,
// dash separated, ASCII only.
func Normalize(raw string) (string, error) {
	id := slug.Make(strings.TrimSpace(raw))
	if id == "" {
		return "", ErrEmpty
	}
	if len(id) > MaxLength {
		return "", fmt.Errorf("run identity longer than %d characters", MaxLength)
	}
	return id, nil
}
