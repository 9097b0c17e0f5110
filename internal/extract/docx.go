package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

const (
	docxDocumentXMLPath = "word/document.xml"
	contentTypesPath    = "[Content_Types].xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

var (
	// wpTag matches one <w:p ...>...</w:p> paragraph but not <w:pPr> or <w:p/>.
	wpTag = regexp.MustCompile(`(?s)<w:p(?:\s[^>]*[^/>])?>(.*?)</w:p>`)
	// wtTag matches <w:t>text</w:t> with any attributes.
	wtTag = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	// Override attributes may appear in either order.
	partNameRe  = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

func readZipFile(zr *zip.Reader, name string) ([]byte, bool, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, true, err
		}
		defer func() { _ = rc.Close() }()
		data, err := io.ReadAll(rc)
		return data, true, err
	}
	return nil, false, nil
}

// mainDocumentPath reads the main document part from [Content_Types].xml and falls
// back to word/document.xml.
func mainDocumentPath(zr *zip.Reader) string {
	data, ok, err := readZipFile(zr, contentTypesPath)
	if !ok || err != nil {
		return docxDocumentXMLPath
	}
	for _, re := range []*regexp.Regexp{partNameRe, partNameRe2} {
		if m := re.FindSubmatch(data); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
	}
	return docxDocumentXMLPath
}

// extractDOCX returns the text of every non-empty paragraph, separated by a blank line.
// Runs inside a paragraph are concatenated as written.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	docPath := mainDocumentPath(zr)
	docXML, ok, err := readZipFile(zr, docPath)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: read %s: %w", docPath, err)
	}
	if !ok {
		return "", fmt.Errorf("extract DOCX: %s not found", docPath)
	}

	var paragraphs []string
	for _, p := range wpTag.FindAllSubmatch(docXML, -1) {
		var b strings.Builder
		for _, run := range wtTag.FindAllSubmatch(p[1], -1) {
			b.WriteString(html.UnescapeString(string(run[1])))
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}
