// Package pdffixture writes small, uncompressed PDF files for tests.
package pdffixture

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Line is a run of Helvetica 12pt text with its baseline origin at X,Y.
type Line struct {
	X, Y float64
	Text string
}

// Page is a US Letter page. Annots are raw annotation dictionaries.
type Page struct {
	Lines  []Line
	Annots []string
}

// Highlight returns a highlight annotation dictionary. color may be empty to
// omit /C; a non-empty comment also attaches a popup.
func Highlight(rect [4]float64, color []float64, comment string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<< /Type /Annot /Subtype /Highlight /Rect [%g %g %g %g]", rect[0], rect[1], rect[2], rect[3])
	fmt.Fprintf(&sb, " /QuadPoints [%g %g %g %g %g %g %g %g]",
		rect[0], rect[3], rect[2], rect[3], rect[0], rect[1], rect[2], rect[1])
	if len(color) > 0 {
		parts := make([]string, len(color))
		for i, c := range color {
			parts[i] = fmt.Sprintf("%g", c)
		}
		fmt.Fprintf(&sb, " /C [%s]", strings.Join(parts, " "))
	}
	if comment != "" {
		fmt.Fprintf(&sb, " /Contents (%s)", escape(comment))
		sb.WriteString(" /Popup << /Type /Annot /Subtype /Popup /Rect [0 0 100 100] >>")
	}
	sb.WriteString(" >>")
	return sb.String()
}

// Build renders pages into PDF bytes with a valid cross-reference table.
func Build(pages []Page) []byte {
	var objects []string
	add := func(body string) int {
		objects = append(objects, body)
		return len(objects)
	}

	add("<< /Type /Catalog /Pages 2 0 R >>")
	add("")
	widths := strings.TrimSpace(strings.Repeat("500 ", 126-32+1))
	add(fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>", widths))

	kids := make([]string, 0, len(pages))
	for _, p := range pages {
		var content strings.Builder
		for _, l := range p.Lines {
			fmt.Fprintf(&content, "BT /F1 12 Tf %g %g Td (%s) Tj ET\n", l.X, l.Y, escape(l.Text))
		}
		contentNum := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()))

		refs := make([]string, 0, len(p.Annots))
		for _, a := range p.Annots {
			refs = append(refs, fmt.Sprintf("%d 0 R", add(a)))
		}
		pageNum := add(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R /Annots [%s] >>",
			contentNum, strings.Join(refs, " "),
		))
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// WriteFile builds the document into a temp dir owned by t and returns its path.
func WriteFile(t testing.TB, name string, pages []Page) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, Build(pages), 0o644); err != nil {
		t.Fatalf("write pdf fixture: %v", err)
	}
	return path
}

// TwoPageSample is one yellow highlight over "Remember this" on page 1 and
// an empty page 2.
func TwoPageSample() []Page {
	return []Page{
		{
			Lines: []Line{
				{X: 72, Y: 700, Text: "Remember this"},
				{X: 72, Y: 600, Text: "Not highlighted"},
			},
			Annots: []string{Highlight([4]float64{70, 695, 200, 715}, []float64{1.0, 0.9412, 0.4}, "")},
		},
		{},
	}
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}
