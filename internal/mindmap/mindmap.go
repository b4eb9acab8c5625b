// Package mindmap parses generated markdown mindmaps into a node tree so
// the API can serve structure instead of raw markdown.
package mindmap

import (
	"errors"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// ErrNoStructure means the markdown had no headings to build a tree from,
// i.e. the generation service ignored the format instructions.
var ErrNoStructure = errors.New("mindmap markdown has no headings")

// Node is one topic in the mindmap. Points are the bullet details attached
// directly under the topic's heading.
type Node struct {
	Title    string   `json:"title"`
	Points   []string `json:"points,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

// Parser turns mindmap markdown into Node trees.
type Parser struct {
	md goldmark.Markdown
}

// NewParser builds a parser. Auto heading IDs are what let the TOC items be
// matched back to positions in the document.
func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// Parse builds the topic tree for the given markdown. Heading hierarchy
// (H1-H4) forms the tree; bullet list items become the Points of the
// heading they appear under.
func (p *Parser) Parse(source []byte) ([]*Node, error) {
	doc := p.md.Parser().Parse(text.NewReader(source))

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(4),
		toc.Compact(true),
	)
	if err != nil {
		return nil, err
	}
	if len(tree.Items) == 0 {
		return nil, ErrNoStructure
	}

	points := collectPoints(doc, source)
	return buildNodes(tree.Items, points), nil
}

// buildNodes mirrors the TOC hierarchy into Nodes, attaching collected
// bullet points by heading ID.
func buildNodes(items toc.Items, points map[string][]string) []*Node {
	var nodes []*Node
	for _, item := range items {
		nodes = append(nodes, &Node{
			Title:    string(item.Title),
			Points:   points[string(item.ID)],
			Children: buildNodes(item.Items, points),
		})
	}
	return nodes
}

// collectPoints walks the document once, attributing each top-level list
// item to the nearest preceding heading.
func collectPoints(doc ast.Node, source []byte) map[string][]string {
	points := make(map[string][]string)
	currentID := ""

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if id, ok := node.AttributeString("id"); ok {
				currentID = string(id.([]byte))
			}
		case *ast.ListItem:
			if currentID == "" {
				return ast.WalkContinue, nil
			}
			if txt := itemText(node, source); txt != "" {
				points[currentID] = append(points[currentID], txt)
			}
			// Children of nested lists would double-report; the item text
			// already excludes them, so keep walking for nested items.
		}
		return ast.WalkContinue, nil
	})

	return points
}

// itemText extracts the text of a list item's own line, excluding any
// nested sublist.
func itemText(item *ast.ListItem, source []byte) string {
	first := item.FirstChild()
	if first == nil {
		return ""
	}

	var b strings.Builder
	_ = ast.Walk(first, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
