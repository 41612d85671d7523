package content

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cookingcapture/api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHTML(t *testing.T) {
	t.Run("strips noise elements", func(t *testing.T) {
		html := `<html>
			<head><script>alert(1)</script><style>body{}</style></head>
			<body>
				<nav>Accueil | Recettes</nav>
				<header>Le meilleur site de cuisine</header>
				<main>
					<h1>Tarte aux pommes</h1>
					<p>Préparation : 20 minutes</p>
				</main>
				<aside>Publicité</aside>
				<footer>Mentions légales</footer>
			</body>
		</html>`

		text, err := NormalizeHTML(html)
		require.NoError(t, err)

		assert.Contains(t, text, "Tarte aux pommes")
		assert.Contains(t, text, "Préparation : 20 minutes")
		assert.NotContains(t, text, "alert")
		assert.NotContains(t, text, "Accueil")
		assert.NotContains(t, text, "Publicité")
		assert.NotContains(t, text, "Mentions légales")
	})

	t.Run("falls back to body without main", func(t *testing.T) {
		text, err := NormalizeHTML("<html><body><p>Recette simple</p></body></html>")
		require.NoError(t, err)
		assert.Contains(t, text, "Recette simple")
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		text, err := NormalizeHTML("<body><p>a    b</p>\n\n\n<p>c</p></body>")
		require.NoError(t, err)
		assert.NotContains(t, text, "    ")
	})

	t.Run("truncates long pages", func(t *testing.T) {
		long := "<body><p>" + strings.Repeat("x", 20000) + "</p></body>"
		text, err := NormalizeHTML(long)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(text), maxTextLength)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc"))
	assert.Len(t, Truncate(strings.Repeat("y", 20000)), maxTextLength)

	// Never splits a multi-byte character at the cap
	accented := "a" + strings.Repeat("é", 10000) // cap falls inside an é
	got := Truncate(accented)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxTextLength-1, len(got))
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractDocumentText(t *testing.T) {
	t.Run("plain text passes through", func(t *testing.T) {
		text, err := ExtractDocumentText([]byte("Ma recette de crêpes"), "text/plain; charset=utf-8")
		require.NoError(t, err)
		assert.Equal(t, "Ma recette de crêpes", text)
	})

	t.Run("docx text is extracted with paragraph breaks", func(t *testing.T) {
		doc := buildDOCX(t, `<?xml version="1.0"?>
			<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
				<w:body>
					<w:p><w:r><w:t>Tarte aux pommes</w:t></w:r></w:p>
					<w:p><w:r><w:t>4 pommes, </w:t></w:r><w:r><w:t>1 pâte</w:t></w:r></w:p>
				</w:body>
			</w:document>`)

		text, err := ExtractDocumentText(doc, TypeDOCX)
		require.NoError(t, err)
		assert.Contains(t, text, "Tarte aux pommes")
		assert.Contains(t, text, "4 pommes, 1 pâte")
		assert.Contains(t, text, "\n")
	})

	t.Run("docx without document part is unsupported", func(t *testing.T) {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		require.NoError(t, w.Close())

		_, err := ExtractDocumentText(buf.Bytes(), TypeDOCX)
		assert.True(t, errors.Is(err, errors.CodeUnsupportedFile))
	})

	t.Run("corrupt pdf is unsupported", func(t *testing.T) {
		_, err := ExtractDocumentText([]byte("not a pdf"), TypePDF)
		assert.True(t, errors.Is(err, errors.CodeUnsupportedFile))
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		_, err := ExtractDocumentText([]byte("zzz"), "application/zip")
		assert.True(t, errors.Is(err, errors.CodeUnsupportedFile))
	})
}
