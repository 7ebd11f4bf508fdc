package fixture

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/rand"
)

const (
	randomSuffixLength = 8
	maxNameLength      = 63
	namespacePrefix    = "a-busola-test"
)

// RandomName returns prefix-<8 random chars>. The prefix is lower-cased, every
// character outside [a-z0-9-] becomes a dash and it is cut short enough for
// the result to be a DNS-1123 label.
func RandomName(prefix string) string {
	prefix = sanitizePrefix(prefix)
	if limit := maxNameLength - randomSuffixLength - 1; len(prefix) > limit {
		prefix = strings.TrimRight(prefix[:limit], "-")
	}
	suffix := rand.String(randomSuffixLength)
	if prefix == "" {
		// labels must start with a letter for most kinds
		return "x" + suffix
	}
	return prefix + "-" + suffix
}

func sanitizePrefix(prefix string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(prefix))
	return strings.Trim(mapped, "-")
}

// NamespaceName returns a fresh namespace name for a scenario.
func NamespaceName() string {
	return RandomName(namespacePrefix)
}
