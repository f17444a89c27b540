package loader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// loadDocx extracts paragraph text from a .docx file. A docx is a zip
// archive whose word/document.xml holds the body as <w:p> paragraphs
// containing <w:t> text runs.
func loadDocx(path string) ([]Element, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid docx archive", ErrUnsupportedFormat, path)
	}
	defer archive.Close()

	var docXML *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docXML = f
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("%w: %s has no word/document.xml", ErrUnsupportedFormat, path)
	}

	rc, err := docXML.Open()
	if err != nil {
		return nil, fmt.Errorf("opening document.xml in %s: %w", path, err)
	}
	defer rc.Close()

	paragraphs, err := extractDocxParagraphs(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrUnsupportedFormat, path, err)
	}

	var elements []Element
	for _, p := range paragraphs {
		elements = append(elements, Element{
			Text: p,
			Metadata: Metadata{
				Source: path,
				Index:  len(elements),
				Type:   ElementParagraph,
			},
		})
	}
	return elements, nil
}

// extractDocxParagraphs streams the WordprocessingML body and emits one
// string per non-empty <w:p> paragraph.
func extractDocxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = inPara
			case "tab":
				if inPara {
					current.WriteByte('\t')
				}
			case "br":
				if inPara {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
