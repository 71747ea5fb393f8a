package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	minTOCLevel = 2
	maxTOCLevel = 4
)

// Heading is one table of contents entry.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// HeadingID returns the synthetic id of the n-th heading (zero based).
func HeadingID(n int) string {
	return fmt.Sprintf("heading-%d", n)
}

// AnnotateHeadings gives every h2, h3 and h4 of an HTML fragment a sequential
// id and returns the rewritten fragment with the headings in document order.
func AnnotateHeadings(fragment string) (string, []Heading, error) {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), container)
	if err != nil {
		return "", nil, fmt.Errorf("parse html: %w", err)
	}

	var toc []Heading
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n); level >= minTOCLevel && level <= maxTOCLevel {
				id := HeadingID(len(toc))
				setAttr(n, "id", id)
				toc = append(toc, Heading{ID: id, Text: textContent(n), Level: level})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}

	var buf strings.Builder
	for _, n := range nodes {
		visit(n)
		if err := html.Render(&buf, n); err != nil {
			return "", nil, fmt.Errorf("render html: %w", err)
		}
	}

	return buf.String(), toc, nil
}

func headingLevel(n *html.Node) int {
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	default:
		return 0
	}
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(sb.String())
}
