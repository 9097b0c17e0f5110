package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("Hello world\n\nLine 2"), ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Hello world\n\nLine 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("\xef\xbb\xbfcaf\xc3\xa9"), ".md")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "café" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("hello\x80world"), ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "hello\uFFFDworld" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_unknownExtension(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("raw content"), ".xyz")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "raw content" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_plainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Foo.TXT")
	if err := os.WriteFile(path, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "File content" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_nonexistent(t *testing.T) {
	if _, err := NewExtractor().Extract(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

const docxBody = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p w:rsidR="00A1"><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t>CHAPTER I</w:t></w:r></w:p>` +
	`<w:p/><w:p w:rsidR="00B2"/>` +
	`<w:p><w:r><w:t xml:space="preserve">Tom &amp; Huck </w:t></w:r><w:r><w:t>ran away.</w:t></w:r></w:p>` +
	`</w:body></w:document>`

func docx(files map[string]string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		fw, _ := w.Create(name)
		_, _ = fw.Write([]byte(body))
	}
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractBytes_docxParagraphs(t *testing.T) {
	got, err := NewExtractor().ExtractBytes(docx(map[string]string{"word/document.xml": docxBody}), ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "CHAPTER I\n\nTom & Huck ran away." {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxContentTypes(t *testing.T) {
	for _, override := range []string{
		`<Override PartName="/word/document2.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`,
		`<Override ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml" PartName="/word/document2.xml"/>`,
	} {
		content := docx(map[string]string{
			"[Content_Types].xml": `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` + override + `</Types>`,
			"word/document2.xml":  docxBody,
		})
		got, err := NewExtractor().ExtractBytes(content, ".docx")
		if err != nil {
			t.Fatalf("ExtractBytes: %v", err)
		}
		if got != "CHAPTER I\n\nTom & Huck ran away." {
			t.Errorf("got %q", got)
		}
	}
}

func TestExtractBytes_docxErrors(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for non-zip docx")
	}
	if _, err := e.ExtractBytes(docx(map[string]string{"other.xml": "x"}), ".docx"); err == nil {
		t.Error("expected error when document part is missing")
	}
}

func TestExtractBytes_pdfInvalid(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes([]byte("%PDF-garbage"), ".pdf"); err == nil {
		t.Fatal("expected error for invalid PDF")
	}
}
