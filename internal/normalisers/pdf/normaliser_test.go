package pdf

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

// buildPDF assembles a single-page PDF whose content stream is content,
// computing the cross-reference offsets.
func buildPDF(content string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.NotNil(t, normaliser.conf)
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"application/pdf"}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_NilBlob(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_NotAPDF(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.Blob{
		Reference: "files/fake.pdf",
		Data:      []byte("this is not a pdf"),
	})
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Nil(t, result)
}

func TestNormalise_SinglePage(t *testing.T) {
	content := "BT\n/F1 12 Tf\n72 712 Td\n(Hello PDF) Tj\n0 -14 Td\n(Second line) Tj\nET"

	result, err := New().Normalise(context.Background(), &domain.Blob{
		Reference: "files/hello.pdf",
		Data:      buildPDF(content),
	})
	require.NoError(t, err)

	require.Len(t, result.Elements, 1)
	assert.Equal(t, KindPage, result.Elements[0].Kind)
	assert.Equal(t, "Hello PDF Second line", result.Elements[0].Text)
	assert.Equal(t, "Hello PDF Second line", result.Title)
}

func TestStreamText(t *testing.T) {
	tests := []struct {
		name     string
		stream   string
		expected string
	}{
		{"Tj", "BT\n(Hello) Tj\nET", "Hello"},
		{"TJ array", "BT\n[(Hel) -20 (lo)] TJ\nET", "Hello"},
		{"positioning adds space", "BT\n(one) Tj\n10 0 Td\n(two) Tj\nET", "one two"},
		{"next line operator", "BT\n(one) Tj\nT*\n(two) Tj\nET", "one\ntwo"},
		{"quote operator", "BT\n(one) Tj\n(two) '\nET", "one\ntwo"},
		{"separate text objects", "BT\n(a) Tj\nET\nBT\n(b) Tj\nET", "a\nb"},
		{"escaped parens", `BT` + "\n" + `(f\(x\)) Tj` + "\nET", "f(x)"},
		{"no text", "q\n1 0 0 1 0 0 cm\nQ", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, streamText([]byte(tc.stream)))
		})
	}
}

func TestDecodeString(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`tab\there`, "tab\there"},
		{`back\\slash`, `back\slash`},
		{`\(paren\)`, "(paren)"},
		{`space\040here`, "space here"},
		{`\101\102`, "AB"},
		{`\q`, "q"},
		{`trailing\`, `trailing\`},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.expected, decodeString([]byte(tc.raw)))
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b\nc", cleanText("  a \t b \n\n\x00c\n"))
	assert.Equal(t, "", cleanText("\n \n"))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "first", firstLine("first\nsecond"))

	long := bytes.Repeat([]byte("x"), maxTitleLen+10)
	assert.Len(t, firstLine(string(long)), maxTitleLen)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
