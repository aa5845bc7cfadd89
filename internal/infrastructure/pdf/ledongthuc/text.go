package ledongthuc

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/pdf-highlights/internal/core/ports"
)

const (
	// Glyph centre sits roughly a third of the font size above the baseline.
	glyphMidHeight = 0.3
	// Baselines closer than this fraction of the font size share a line.
	lineTolerance = 0.5
	// A horizontal gap wider than this fraction of the font size is a word break.
	wordGap = 0.25
)

// clip keeps the glyphs whose centre lies inside rect.
func clip(texts []pdf.Text, rect ports.Rect) []pdf.Text {
	rect = rect.Normalize()
	var out []pdf.Text
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		cx := t.X + t.W/2
		cy := t.Y + t.FontSize*glyphMidHeight
		if rect.Contains(cx, cy) {
			out = append(out, t)
		}
	}
	return out
}

// joinReadingOrder lays glyphs out top to bottom, left to right. Lines are
// separated by newlines and wide gaps inside a line become spaces.
func joinReadingOrder(texts []pdf.Text) string {
	if len(texts) == 0 {
		return ""
	}
	glyphs := make([]pdf.Text, len(texts))
	copy(glyphs, texts)
	sort.SliceStable(glyphs, func(i, j int) bool {
		return glyphs[i].Y > glyphs[j].Y
	})

	var lines [][]pdf.Text
	for _, g := range glyphs {
		if n := len(lines); n > 0 {
			anchor := lines[n-1][0]
			if math.Abs(anchor.Y-g.Y) <= lineTolerance*math.Max(anchor.FontSize, 1) {
				lines[n-1] = append(lines[n-1], g)
				continue
			}
		}
		lines = append(lines, []pdf.Text{g})
	}

	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sort.SliceStable(line, func(a, b int) bool {
			return line[a].X < line[b].X
		})
		writeLine(&sb, line)
	}
	return sb.String()
}

func writeLine(sb *strings.Builder, line []pdf.Text) {
	for i, g := range line {
		if i > 0 {
			prev := line[i-1]
			gap := g.X - (prev.X + prev.W)
			if gap > wordGap*math.Max(g.FontSize, 1) && !endsWithSpace(prev.S) && !startsWithSpace(g.S) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(g.S)
	}
}

func endsWithSpace(s string) bool {
	return strings.HasSuffix(s, " ")
}

func startsWithSpace(s string) bool {
	return strings.HasPrefix(s, " ")
}
