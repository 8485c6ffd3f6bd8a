package render

import (
	"image/color"

	"solana-flex-card/internal/domain"
)

var (
	cyan      = color.RGBA{R: 0, G: 240, B: 255, A: 255}
	magenta   = color.RGBA{R: 255, G: 0, B: 229, A: 255}
	gold      = color.RGBA{R: 255, G: 215, B: 0, A: 255}
	neonGreen = color.RGBA{R: 0, G: 255, B: 130, A: 255}
	neonRed   = color.RGBA{R: 255, G: 60, B: 80, A: 255}
	bgDark    = color.RGBA{R: 8, G: 8, B: 18, A: 255}
	white     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	dimGray   = color.RGBA{R: 100, G: 100, B: 130, A: 255}
	labelGray = color.RGBA{R: 160, G: 160, B: 190, A: 255}
	gridLine  = color.RGBA{R: 20, G: 20, B: 40, A: 255}
)

// Theme is the per-tier visual treatment: accent colors and the density of
// the decorative particle field.
type Theme struct {
	Name      string
	Primary   color.RGBA
	Secondary color.RGBA
	Particles int
}

func themeFor(t domain.Tier) Theme {
	switch t {
	case domain.TierWhale:
		return Theme{Name: "WHALE", Primary: gold, Secondary: cyan, Particles: 70}
	case domain.TierShark:
		return Theme{Name: "SHARK", Primary: magenta, Secondary: neonRed, Particles: 55}
	case domain.TierDolphin:
		return Theme{Name: "DOLPHIN", Primary: neonGreen, Secondary: cyan, Particles: 45}
	default:
		return Theme{Name: "FISH", Primary: cyan, Secondary: magenta, Particles: 35}
	}
}
