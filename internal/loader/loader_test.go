package loader

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadText_SplitsParagraphs(t *testing.T) {
	path := writeFile(t, "notes.txt", "First paragraph\nstill first.\n\nSecond paragraph.\n\n\nThird.\n")

	elements, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(elements))
	}

	want := []string{"First paragraph\nstill first.", "Second paragraph.", "Third."}
	for i, el := range elements {
		if el.Text != want[i] {
			t.Errorf("element %d: got %q, want %q", i, el.Text, want[i])
		}
		if el.Metadata.Index != i {
			t.Errorf("element %d: index = %d", i, el.Metadata.Index)
		}
		if el.Metadata.Source != path {
			t.Errorf("element %d: source = %q, want %q", i, el.Metadata.Source, path)
		}
		if el.Metadata.Type != ElementParagraph {
			t.Errorf("element %d: type = %q", i, el.Metadata.Type)
		}
	}
}

func TestLoadMarkdown_SplitsBlocks(t *testing.T) {
	content := "# Title\n\nA paragraph about capitals.\n\n- one\n- two\n\n```\ncode here\n```\n"
	path := writeFile(t, "doc.md", content)

	elements, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(elements) != 4 {
		t.Fatalf("expected 4 elements, got %d: %+v", len(elements), elements)
	}

	wantTypes := []ElementType{ElementHeading, ElementParagraph, ElementList, ElementCode}
	for i, el := range elements {
		if el.Metadata.Type != wantTypes[i] {
			t.Errorf("element %d: type = %q, want %q", i, el.Metadata.Type, wantTypes[i])
		}
	}

	if elements[0].Text != "Title" {
		t.Errorf("heading text = %q, want %q", elements[0].Text, "Title")
	}
	if elements[1].Text != "A paragraph about capitals." {
		t.Errorf("paragraph text = %q", elements[1].Text)
	}
}

func TestLoadDocx_ExtractsParagraphs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")
	writeDocx(t, path, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>The capital of France</w:t></w:r><w:r><w:t> is Paris.</w:t></w:r></w:p>
    <w:p><w:r><w:t>A second paragraph.</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`)

	elements, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
	if elements[0].Text != "The capital of France is Paris." {
		t.Errorf("first paragraph = %q", elements[0].Text)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "image.png", "not text")

	_, err := Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoad_InvalidEncodingIsUnsupported(t *testing.T) {
	path := writeFile(t, "binary.txt", string([]byte{0xff, 0xfe, 0x00, 0x80, 0x81}))

	_, err := Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for invalid UTF-8, got %v", err)
	}
}

func TestLoad_EmptyDocument(t *testing.T) {
	path := writeFile(t, "empty.txt", "\n  \n\t\n")

	_, err := Load(path)
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestLoad_CorruptDocxIsUnsupported(t *testing.T) {
	path := writeFile(t, "broken.docx", "this is not a zip archive")

	_, err := Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

// writeDocx creates a minimal docx (zip with word/document.xml) for tests.
func writeDocx(t *testing.T, path, documentXML string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("writing document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
}
