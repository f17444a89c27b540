package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedFormat is returned when the file extension or content
	// is not one of the supported formats (.txt, .md, .docx).
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyDocument is returned when no text elements could be
	// extracted from the file.
	ErrEmptyDocument = errors.New("no text elements extracted from document")
)

// ElementType categorizes a structural element of a document.
type ElementType string

const (
	ElementParagraph ElementType = "paragraph"
	ElementHeading   ElementType = "heading"
	ElementList      ElementType = "list"
	ElementCode      ElementType = "code"
)

// Element is a single text element extracted from a document,
// independently meaningful as retrieval context.
type Element struct {
	Text     string
	Metadata Metadata
}

// Metadata records where an element came from.
type Metadata struct {
	Source string      // source file path
	Index  int         // position of the element within the document
	Type   ElementType // structural kind of the element
}

// Load parses the file at path into an ordered sequence of text elements,
// split along natural structural boundaries. Supported formats: plain text
// (.txt), Markdown (.md), and Word documents (.docx).
func Load(path string) ([]Element, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		elements []Element
		err      error
	)
	switch ext {
	case ".txt":
		elements, err = loadText(path)
	case ".md", ".markdown":
		elements, err = loadMarkdown(path)
	case ".docx":
		elements, err = loadDocx(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}
	return elements, nil
}

// loadText splits a plain-text file into paragraphs on blank lines.
func loadText(path string) ([]Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8 text", ErrUnsupportedFormat, path)
	}

	var elements []Element
	for _, block := range splitParagraphs(string(data)) {
		elements = append(elements, Element{
			Text: block,
			Metadata: Metadata{
				Source: path,
				Index:  len(elements),
				Type:   ElementParagraph,
			},
		})
	}
	return elements, nil
}

// splitParagraphs breaks text into trimmed, non-empty blocks separated
// by one or more blank lines.
func splitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")

	var (
		paragraphs []string
		current    []string
	)
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, "\n"))
			current = nil
		}
	}

	for _, line := range strings.Split(normalized, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, strings.TrimRight(line, " \t"))
	}
	flush()
	return paragraphs
}
