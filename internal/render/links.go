package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FragmentTarget returns the target of an in-page link ("#key").
func FragmentTarget(href string) (string, bool) {
	if !strings.HasPrefix(href, "#") || len(href) == 1 {
		return "", false
	}
	return href[1:], true
}

// FragmentLinks returns the targets of every "#..." link in an HTML fragment,
// in document order, without duplicates.
func FragmentLinks(fragment string) []string {
	var targets []string
	seen := make(map[string]bool)

	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return targets
		}
		if tt != html.StartTagToken {
			continue
		}

		token := tokenizer.Token()
		if token.DataAtom != atom.A {
			continue
		}
		for _, attr := range token.Attr {
			if attr.Key != "href" {
				continue
			}
			if target, ok := FragmentTarget(attr.Val); ok && !seen[target] {
				seen[target] = true
				targets = append(targets, target)
			}
		}
	}
}
