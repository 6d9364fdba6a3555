package inspect

import (
	"fmt"
	"strings"

	"github.com/matzehuels/html2deck/pkg/errors"
)

// XPath translates a simple CSS selector into an XPath expression for
// descendants of the context node. Supported forms are "tag", ".class",
// "#id" and compounds such as "div.slide.dark"; combinators are not.
func XPath(selector string) (string, error) {
	sel := strings.TrimSpace(selector)
	if sel == "" || strings.ContainsAny(sel, " >+~,[]:*") {
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported selector %q", selector)
	}

	tag := "*"
	var preds []string
	rest := sel
	if i := strings.IndexAny(rest, ".#"); i != 0 {
		if i < 0 {
			i = len(rest)
		}
		tag = strings.ToLower(rest[:i])
		rest = rest[i:]
	}
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, ".#")
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		rest = rest[end:]
		if name == "" || strings.ContainsAny(name, `"'`) {
			return "", errors.New(errors.ErrCodeUnsupported, "unsupported selector %q", selector)
		}
		switch kind {
		case '.':
			preds = append(preds, fmt.Sprintf(`contains(concat(" ", normalize-space(@class), " "), " %s ")`, name))
		case '#':
			preds = append(preds, fmt.Sprintf(`@id="%s"`, name))
		}
	}

	expr := ".//" + tag
	for _, p := range preds {
		expr += "[" + p + "]"
	}
	return expr, nil
}
