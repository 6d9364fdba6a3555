package extract

import (
	"strings"

	"github.com/matzehuels/html2deck/pkg/scene"
)

// Classifier resolves a node's role from its class set.
type Classifier struct {
	icons map[string]bool
	code  map[string]bool
}

// NewClassifier builds a classifier from icon and code-block class names.
func NewClassifier(iconClasses, codeBlockClasses []string) *Classifier {
	c := &Classifier{icons: make(map[string]bool), code: make(map[string]bool)}
	for _, name := range iconClasses {
		c.icons[name] = true
	}
	for _, name := range codeBlockClasses {
		c.code[name] = true
	}
	return c
}

// Classify returns RoleIcon when any class is an icon class, RoleCodeBlock
// when any class is a code-block class, and RoleGeneric otherwise. Icon
// classes win when both match.
func (c *Classifier) Classify(classes []string) scene.Role {
	role := scene.RoleGeneric
	for _, name := range classes {
		if c.icons[name] {
			return scene.RoleIcon
		}
		if c.code[name] {
			role = scene.RoleCodeBlock
		}
	}
	return role
}

// SplitClasses splits a class attribute into its unique names, in order.
func SplitClasses(attr string) []string {
	fields := strings.Fields(attr)
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
