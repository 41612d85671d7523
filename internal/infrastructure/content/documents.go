package content

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/cookingcapture/api/pkg/errors"
	"github.com/ledongthuc/pdf"
)

// Document content types accepted by the capture flow.
const (
	TypePDF  = "application/pdf"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeText = "text/plain"
)

// ExtractDocumentText pulls plain text from an uploaded document. The
// result is truncated to the extraction budget like webpage text.
func ExtractDocumentText(data []byte, contentType string) (string, error) {
	switch normalizeContentType(contentType) {
	case TypePDF:
		return extractPDF(data)
	case TypeDOCX:
		return extractDOCX(data)
	case TypeText:
		return Truncate(string(data)), nil
	default:
		return "", apperrors.NewUnsupportedFileError(contentType)
	}
}

func normalizeContentType(contentType string) string {
	// Strip parameters such as "; charset=utf-8"
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(strings.ToLower(contentType))
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.NewUnsupportedFileError(TypePDF).WithCause(err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}

	return Truncate(buf.String()), nil
}

// extractDOCX reads the main document part of a .docx archive. A docx
// file is a zip whose word/document.xml holds runs of <w:t> text.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.NewUnsupportedFileError(TypeDOCX).WithCause(err)
	}

	var document io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("opening document part: %w", err)
			}
			break
		}
	}
	if document == nil {
		return "", apperrors.NewUnsupportedFileError(TypeDOCX).
			WithCause(fmt.Errorf("archive has no word/document.xml"))
	}
	defer document.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(document)
	inText := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing document xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return Truncate(strings.TrimSpace(sb.String())), nil
}
