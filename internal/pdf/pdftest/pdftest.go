// Package pdftest builds small, well-formed PDF fixtures for tests. The
// fixtures are written byte by byte with a correct cross-reference table so
// both PDF backends used by this module can parse them without external
// testdata.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFormPDF writes a single-page AcroForm fixture and returns its path.
// The form has a text field "name" at rect [100 700 300 720], a checkbox
// "subscribe" with On/Off appearance states, and a choice field "color"
// whose /Opt array mixes plain strings, an [export, display] pair, a
// skipped integer, a name, and a non-string pair. The page shows the label
// "Name:" just left of the text field.
func WriteFormPDF(t *testing.T, dir string) string {
	t.Helper()

	content := "BT /F1 12 Tf 40 706 Td (Name:) Tj ET\n"

	b := newBuilder()
	b.add("<< /Type /Catalog /Pages 2 0 R /AcroForm 3 0 R >>")
	b.add("<< /Type /Pages /Kids [4 0 R] /Count 1 >>")
	b.add("<< /Fields [5 0 R 6 0 R 7 0 R] >>")
	b.add("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Resources << /Font << /F1 8 0 R >> >> /Contents 9 0 R /Annots [5 0 R 6 0 R 7 0 R] >>")
	b.add("<< /Type /Annot /Subtype /Widget /FT /Tx /T (name) /Rect [100 700 300 720] /P 4 0 R >>")
	b.add("<< /Type /Annot /Subtype /Widget /FT /Btn /T (subscribe) /Rect [100 650 115 665] " +
		"/V /Off /AS /Off /AP << /N << /On 10 0 R /Off 11 0 R >> >> /P 4 0 R >>")
	b.add("<< /Type /Annot /Subtype /Widget /FT /Ch /T (color) /Rect [350 700 450 720] " +
		"/Opt [(Red) [(x1) (Blue)] 5 /Green [12 34]] /P 4 0 R >>")
	b.add(fontObject())
	b.addStream("<< /Length %d >>", content)
	b.addStream("<< /Type /XObject /Subtype /Form /BBox [0 0 15 15] /Length %d >>", "")
	b.addStream("<< /Type /XObject /Subtype /Form /BBox [0 0 15 15] /Length %d >>", "")

	return writeFixture(t, dir, "form.pdf", b.bytes())
}

// WritePlainPDF writes a one-page PDF with no AcroForm.
func WritePlainPDF(t *testing.T, dir string) string {
	t.Helper()

	b := newBuilder()
	b.add("<< /Type /Catalog /Pages 2 0 R >>")
	b.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.add("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R >>")
	b.addStream("<< /Length %d >>", "")

	return writeFixture(t, dir, "plain.pdf", b.bytes())
}

// WriteTwoPageFormPDF writes a two-page fixture whose three fields sit on
// the second page, each resolvable through a different route: a widget /P
// reference, membership in the page's /Annots array, and an explicit
// /Page integer. The MediaBox lives on the page-tree node so page size
// resolution has to walk the parent chain.
func WriteTwoPageFormPDF(t *testing.T, dir string) string {
	t.Helper()

	b := newBuilder()
	b.add("<< /Type /Catalog /Pages 2 0 R /AcroForm 5 0 R >>")
	b.add("<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 /MediaBox [0 0 612 792] >>")
	b.add("<< /Type /Page /Parent 2 0 R /Contents 9 0 R >>")
	b.add("<< /Type /Page /Parent 2 0 R /Contents 9 0 R /Annots [6 0 R 7 0 R] >>")
	b.add("<< /Fields [6 0 R 7 0 R 8 0 R] >>")
	b.add("<< /Type /Annot /Subtype /Widget /FT /Tx /T (by_page_ref) /Rect [100 700 300 720] /P 4 0 R >>")
	b.add("<< /Type /Annot /Subtype /Widget /FT /Tx /T (by_annots) /Rect [100 600 300 620] >>")
	b.add("<< /FT /Tx /T (by_explicit_index) /Rect [100 500 300 520] /Page 1 >>")
	b.addStream("<< /Length %d >>", "")

	return writeFixture(t, dir, "twopage.pdf", b.bytes())
}

// builder assembles a PDF file, tracking object offsets for the xref
// table. Object numbers are assigned in add order, starting at 1.
type builder struct {
	buf     bytes.Buffer
	offsets []int
}

func newBuilder() *builder {
	b := &builder{}
	b.buf.WriteString("%PDF-1.4\n")
	return b
}

// add appends one indirect object with the given body.
func (b *builder) add(body string) {
	b.offsets = append(b.offsets, b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", len(b.offsets), body)
}

// addStream appends a stream object. dictFormat must contain a %d verb for
// the stream length.
func (b *builder) addStream(dictFormat, stream string) {
	body := fmt.Sprintf(dictFormat, len(stream)) + "\nstream\n" + stream + "\nendstream"
	b.add(body)
}

// bytes finalizes the file: xref table, trailer, startxref.
func (b *builder) bytes() []byte {
	xrefOffset := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", len(b.offsets)+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for _, off := range b.offsets {
		fmt.Fprintf(&b.buf, "%010d %05d n \n", off, 0)
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(b.offsets)+1, xrefOffset)
	return b.buf.Bytes()
}

// fontObject returns a Helvetica font dict with explicit widths so glyph
// advances are available to the text extractor.
func fontObject() string {
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica "+
		"/FirstChar 32 /LastChar 126 /Widths [%s] /Encoding /WinAnsiEncoding >>", widths)
}

func writeFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
