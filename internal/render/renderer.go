// Package render draws holder metrics into a fixed-size PNG flex card.
//
// Cards are drawn at 2x resolution and downscaled with a Catmull-Rom kernel.
// Everything decorative is seeded from the wallet address, so the same
// metrics always produce byte-identical output.
package render

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"solana-flex-card/internal/domain"
)

const supersample = 2

// Config sets the card dimensions and branding strings.
type Config struct {
	Width   int
	Height  int
	Ticker  string
	Tagline string
}

// Renderer draws flex cards. Safe for concurrent use; Render shares no
// mutable state.
type Renderer struct {
	width   int
	height  int
	ticker  string
	tagline string
	fonts   *fontSet
	log     zerolog.Logger
}

// New creates a renderer with the embedded Go fonts parsed up front.
func New(cfg Config, log zerolog.Logger) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid card dimensions %dx%d", domain.ErrRenderFailure, cfg.Width, cfg.Height)
	}
	fonts, err := loadFonts()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailure, err)
	}
	return &Renderer{
		width:   cfg.Width,
		height:  cfg.Height,
		ticker:  cfg.Ticker,
		tagline: cfg.Tagline,
		fonts:   fonts,
		log:     log.With().Str("component", "renderer").Logger(),
	}, nil
}

// Render draws the card for the given metrics and returns encoded PNG bytes.
func (r *Renderer) Render(m domain.HolderMetrics) ([]byte, error) {
	w := r.width * supersample
	h := r.height * supersample
	theme := themeFor(m.Tier)
	rng := rand.New(rand.NewSource(walletSeed(m.Wallet)))

	dc := gg.NewContext(w, h)
	r.drawBackground(dc, theme, rng, w, h)
	r.drawGradientBars(dc, theme, w, h)
	r.drawContent(dc, m, theme, w, h)
	drawScanlines(dc, w, h)

	out := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	xdraw.CatmullRom.Scale(out, out.Bounds(), dc.Image(), dc.Image().Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", domain.ErrRenderFailure, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawBackground(dc *gg.Context, theme Theme, rng *rand.Rand, w, h int) {
	dc.SetColor(bgDark)
	dc.Clear()

	// Grid
	setColor(dc, gridLine, 255)
	dc.SetLineWidth(1)
	for x := 0; x < w; x += 60 {
		dc.DrawLine(float64(x), 0, float64(x), float64(h))
	}
	for y := 0; y < h; y += 60 {
		dc.DrawLine(0, float64(y), float64(w), float64(y))
	}
	dc.Stroke()

	// Corner glows, concentric fills at fading alpha
	for rad := 350; rad > 0; rad -= 3 {
		setColor(dc, theme.Primary, 14*rad/350)
		dc.DrawCircle(0, 0, float64(rad))
		dc.Fill()
	}
	for rad := 250; rad > 0; rad -= 3 {
		setColor(dc, theme.Secondary, 10*rad/250)
		dc.DrawCircle(float64(w), float64(h), float64(rad))
		dc.Fill()
	}

	// Particle field
	palette := []color.RGBA{theme.Primary, theme.Secondary, white}
	for i := 0; i < theme.Particles; i++ {
		x := rng.Intn(w)
		y := rng.Intn(h)
		size := 2 + rng.Intn(4)
		alpha := 30 + rng.Intn(71)
		setColor(dc, palette[rng.Intn(len(palette))], alpha)
		dc.DrawCircle(float64(x), float64(y), float64(size)/2)
		dc.Fill()
	}
}

func (r *Renderer) drawGradientBars(dc *gg.Context, theme Theme, w, h int) {
	top := gg.NewLinearGradient(0, 0, float64(w), 0)
	top.AddColorStop(0, theme.Primary)
	top.AddColorStop(1, theme.Secondary)
	dc.SetFillStyle(top)
	dc.DrawRectangle(0, 0, float64(w), 6)
	dc.Fill()

	bottom := gg.NewLinearGradient(0, 0, float64(w), 0)
	bottom.AddColorStop(0, theme.Secondary)
	bottom.AddColorStop(1, theme.Primary)
	dc.SetFillStyle(bottom)
	dc.DrawRectangle(0, float64(h)-6, float64(w), 6)
	dc.Fill()
}

func (r *Renderer) drawContent(dc *gg.Context, m domain.HolderMetrics, theme Theme, w, h int) {
	px := 60.0
	textZone := float64(w) * 0.58
	y := 50.0

	// Header: ticker plus the card badge
	neonText(dc, r.fonts.face(r.fonts.bold, 56), r.ticker, px, y+52, theme.Primary, 3)

	badge := "FLEX CARD"
	dc.SetFontFace(r.fonts.face(r.fonts.medium, 24))
	bw, _ := dc.MeasureString(badge)
	bx := textZone - bw - 20
	setColor(dc, theme.Secondary, 30)
	dc.DrawRoundedRectangle(bx-15, y+8, bw+30, 40, 8)
	dc.Fill()
	setColor(dc, theme.Secondary, 200)
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(bx-15, y+8, bw+30, 40, 8)
	dc.Stroke()
	setColor(dc, theme.Secondary, 255)
	dc.DrawString(badge, bx, y+36)
	y += 70

	// Wallet address with the tier/rank readout on the right
	dc.SetFontFace(r.fonts.face(r.fonts.mono, 26))
	setColor(dc, dimGray, 255)
	dc.DrawString(m.Wallet.Short(), px, y+24)

	ident := theme.Name
	if m.Rank.Ranked {
		ident = fmt.Sprintf("%s  |  HOLDER #%d", theme.Name, m.Rank.Position)
	}
	dc.SetFontFace(r.fonts.face(r.fonts.medium, 22))
	iw, _ := dc.MeasureString(ident)
	setColor(dc, theme.Primary, 220)
	dc.DrawString(ident, textZone-iw-20, y+24)
	y += 50

	r.separator(dc, theme, px, textZone, y)
	y += 25

	// Balance block
	dc.SetFontFace(r.fonts.face(r.fonts.medium, 22))
	setColor(dc, labelGray, 255)
	dc.DrawString("TOKEN BALANCE", px, y+20)
	y += 35

	balance := FormatAmount(m.Balance) + " " + strings.TrimPrefix(r.ticker, "$")
	size := r.fitSize(dc, r.fonts.bold, balance, textZone-px, 72, 34)
	neonText(dc, r.fonts.face(r.fonts.bold, size), balance, px, y+size*0.9, white, 2)
	y += 95

	// USD value, with the 24h change alongside when market data is live.
	// Unavailable prices render the sentinel, never a fabricated $0.
	usd := "N/A"
	usdColor := dimGray
	if m.USDAvailable {
		usd = FormatUSD(m.USDValue)
		usdColor = neonGreen
	}
	usdText := "~ " + usd
	dc.SetFontFace(r.fonts.face(r.fonts.bold, 38))
	setColor(dc, usdColor, 255)
	dc.DrawString(usdText, px, y+34)

	if m.MarketAvailable {
		uw, _ := dc.MeasureString(usdText)
		change := m.Market.PriceChange24h
		changeColor := neonGreen
		if change < 0 {
			changeColor = neonRed
		}
		dc.SetFontFace(r.fonts.face(r.fonts.medium, 26))
		setColor(dc, changeColor, 255)
		dc.DrawString(FormatChange(change), px+uw+25, y+32)
	}
	y += 70

	r.separator(dc, theme, px, textZone, y)
	y += 25

	// Stat cards
	gap := 25.0
	cardW := (textZone - px - gap) / 2
	cardH := 175.0

	r.statCard(dc, px, y, cardW, cardH, theme.Primary,
		"DIAMOND HANDS", FormatDuration(m.HoldDuration), HandsLabel(m.HoldDuration))
	r.statCard(dc, px+cardW+gap, y, cardW, cardH, theme.Secondary,
		"MARKET CAP", FormatMarketCap(m.Market.MarketCapUSD, m.MarketAvailable), r.ticker)

	// Footer
	footY := float64(h) - 55
	dc.SetFontFace(r.fonts.face(r.fonts.regular, 20))
	setColor(dc, dimGray, 255)
	dc.DrawString(r.tagline, px, footY+16)
	network := "SOLANA NETWORK"
	nw, _ := dc.MeasureString(network)
	dc.DrawString(network, float64(w)-px-nw, footY+16)
}

func (r *Renderer) statCard(dc *gg.Context, x, y, w, h float64, accent color.RGBA, label, value, sub string) {
	dc.SetRGBA255(15, 15, 30, 220)
	dc.DrawRoundedRectangle(x, y, w, h, 14)
	dc.Fill()
	setColor(dc, accent, 160)
	dc.SetLineWidth(3)
	dc.DrawRoundedRectangle(x, y, w, h, 14)
	dc.Stroke()
	setColor(dc, accent, 80)
	dc.SetLineWidth(2)
	dc.DrawLine(x+14, y+2, x+w-14, y+2)
	dc.Stroke()

	dc.SetFontFace(r.fonts.face(r.fonts.medium, 18))
	setColor(dc, labelGray, 255)
	dc.DrawString(label, x+22, y+30)

	start := 36.0
	if len(value) > 14 {
		start = 28
	}
	size := r.fitSize(dc, r.fonts.bold, value, w-44, start, 18)
	neonText(dc, r.fonts.face(r.fonts.bold, size), value, x+22, y+55+size*0.85, accent, 1)

	if sub != "" {
		dc.SetFontFace(r.fonts.face(r.fonts.regular, 18))
		setColor(dc, dimGray, 255)
		dc.DrawString(sub, x+22, y+h-24)
	}
}

func (r *Renderer) separator(dc *gg.Context, theme Theme, x0, x1, y float64) {
	setColor(dc, theme.Primary, 50)
	dc.SetLineWidth(2)
	dc.DrawLine(x0, y, x1, y)
	dc.Stroke()
}

// fitSize shrinks the font size until text fits maxW, bottoming out at min.
// Extreme values clip at the minimum size instead of overflowing the zone.
func (r *Renderer) fitSize(dc *gg.Context, f *truetype.Font, text string, maxW, size, min float64) float64 {
	for size > min {
		dc.SetFontFace(r.fonts.face(f, size))
		tw, _ := dc.MeasureString(text)
		if tw <= maxW {
			break
		}
		size -= 2
	}
	return size
}

func drawScanlines(dc *gg.Context, w, h int) {
	dc.SetRGBA255(0, 0, 0, 8)
	dc.SetLineWidth(1)
	for y := 0; y < h; y += 4 {
		dc.DrawLine(0, float64(y)+0.5, float64(w), float64(y)+0.5)
	}
	dc.Stroke()
}

func neonText(dc *gg.Context, face font.Face, text string, x, y float64, c color.RGBA, glow int) {
	dc.SetFontFace(face)
	setColor(dc, c, 35)
	for dx := -glow; dx <= glow; dx++ {
		for dy := -glow; dy <= glow; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			dc.DrawString(text, x+float64(dx), y+float64(dy))
		}
	}
	setColor(dc, c, 255)
	dc.DrawString(text, x, y)
}

func setColor(dc *gg.Context, c color.RGBA, alpha int) {
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), alpha)
}

// walletSeed derives the deterministic particle seed from the address.
func walletSeed(w domain.WalletAddress) int64 {
	sum := sha256.Sum256([]byte(w.String()))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
