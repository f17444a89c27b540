package loader

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// loadMarkdown parses a Markdown file with goldmark and emits one element
// per top-level block (heading, paragraph, list, code block).
func loadMarkdown(path string) ([]Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8 text", ErrUnsupportedFormat, path)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(data))

	var elements []Element
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		content := blockText(node, data)
		if content == "" {
			continue
		}
		elements = append(elements, Element{
			Text: content,
			Metadata: Metadata{
				Source: path,
				Index:  len(elements),
				Type:   elementTypeFor(node),
			},
		})
	}
	return elements, nil
}

func elementTypeFor(node ast.Node) ElementType {
	switch node.Kind() {
	case ast.KindHeading:
		return ElementHeading
	case ast.KindList:
		return ElementList
	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		return ElementCode
	default:
		return ElementParagraph
	}
}

// blockText collects the raw source text of a block node, including
// nested blocks such as list items.
func blockText(node ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
