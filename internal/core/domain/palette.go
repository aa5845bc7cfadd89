package domain

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB channels are nominally in [0,1]; out-of-range values are accepted.
type RGB struct {
	R, G, B float64
}

var Black = RGB{}

type PaletteEntry struct {
	Color    RGB
	Category string
}

const (
	CategoryIdeas    = "Ideas & Insights"
	CategoryGeneral  = "General Notes"
	CategoryActions  = "Action Items / To-Do"
	CategoryQuotes   = "Quotes & References"
	CategoryCritical = "Critical Issues / Warnings"
)

// Palette is consulted in order; the first closest entry wins.
var Palette = [...]PaletteEntry{
	{Color: RGB{0.5608, 0.8706, 0.9765}, Category: CategoryIdeas},
	{Color: RGB{1.0, 0.9412, 0.4}, Category: CategoryGeneral},
	{Color: RGB{0.4902, 0.9412, 0.4}, Category: CategoryActions},
	{Color: RGB{0.9686, 0.6, 0.8196}, Category: CategoryQuotes},
	{Color: RGB{0.9216, 0.2863, 0.2863}, Category: CategoryCritical},
}

// Classify returns the category of the palette colour nearest to c in RGB space.
func Classify(c RGB) string {
	target := colorful.Color{R: c.R, G: c.G, B: c.B}

	best := Palette[0]
	bestDistance := target.DistanceRgb(toColorful(best.Color))
	for _, entry := range Palette[1:] {
		if d := target.DistanceRgb(toColorful(entry.Color)); d < bestDistance {
			best, bestDistance = entry, d
		}
	}
	return best.Category
}

// ColorFromComponents interprets a PDF colour array (/C): gray, RGB or CMYK.
// An empty or malformed array reports ok=false.
func ColorFromComponents(components []float64) (RGB, bool) {
	switch len(components) {
	case 1:
		g := components[0]
		return RGB{g, g, g}, true
	case 3:
		return RGB{components[0], components[1], components[2]}, true
	case 4:
		c, m, y, k := components[0], components[1], components[2], components[3]
		return RGB{
			R: (1 - c) * (1 - k),
			G: (1 - m) * (1 - k),
			B: (1 - y) * (1 - k),
		}, true
	default:
		return RGB{}, false
	}
}

func (c RGB) Hex() string {
	return toColorful(c).Clamped().Hex()
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}
