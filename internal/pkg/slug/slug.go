package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxLength   = 100
	maxAttempts = 1000
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-+`)
)

// ExistsFunc reports whether candidate is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Make turns a title into a URL slug: lowercase ASCII letters, digits and
// single hyphens, at most MaxLength bytes.
func Make(text string) string {
	stripped, _, err := transform.String(
		transform.Chain(runes.Map(toSpace), norm.NFD, runes.Remove(runes.In(unicode.Mn))),
		strings.ToLower(text),
	)
	if err != nil {
		stripped = strings.ToLower(text)
	}

	s := disallowed.ReplaceAllString(stripped, "")
	s = strings.TrimSpace(s)
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	if len(s) > MaxLength {
		s = s[:MaxLength]
	}
	return s
}

// toSpace folds every Unicode space (NBSP, em space, vertical tab) into
// ' ' so the ASCII-only patterns below still see a word break.
func toSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	return r
}

// Unique returns base, or the first of base-1, base-2, ... that exists
// reports as free.
func Unique(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	candidate := base
	for i := 1; i <= maxAttempts; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxAttempts)
}
