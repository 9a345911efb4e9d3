// Package render rasterizes glyphs and composites the launcher strip into
// an RGBA frame.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/atomicstack/runstrip/internal/logging/events"
)

// Metrics describes a rasterized glyph. XMin is the left bearing and YMin
// the offset of the bitmap's bottom edge above the baseline, both in
// pixels.
type Metrics struct {
	Width   int
	Height  int
	XMin    int
	YMin    int
	Advance float64
}

// Glyph is a coverage bitmap, row-major, Width*Height bytes of alpha.
type Glyph struct {
	Metrics
	Coverage []uint8
}

// Rasterizer turns a rune at a pixel size into a glyph.
type Rasterizer interface {
	Rasterize(r rune, px int) (Glyph, error)
}

// FaceRasterizer rasterizes with an OpenType font, keeping one face per
// pixel size.
type FaceRasterizer struct {
	font  *opentype.Font
	faces map[int]font.Face
}

// NewFaceRasterizer wraps a parsed font.
func NewFaceRasterizer(f *opentype.Font) *FaceRasterizer {
	return &FaceRasterizer{font: f, faces: make(map[int]font.Face)}
}

func (fr *FaceRasterizer) face(px int) (font.Face, error) {
	if face, ok := fr.faces[px]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(fr.font, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create %dpx face: %w", px, err)
	}
	fr.faces[px] = face
	return face, nil
}

// Rasterize implements Rasterizer.
func (fr *FaceRasterizer) Rasterize(r rune, px int) (Glyph, error) {
	face, err := fr.face(px)
	if err != nil {
		return Glyph{}, err
	}
	dr, mask, maskp, advance, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return Glyph{}, fmt.Errorf("no glyph for %q", r)
	}
	g := Glyph{Metrics: Metrics{
		Width:   dr.Dx(),
		Height:  dr.Dy(),
		XMin:    dr.Min.X,
		YMin:    -dr.Max.Y,
		Advance: float64(advance) / 64,
	}}
	g.Coverage = make([]uint8, g.Width*g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
			g.Coverage[y*g.Width+x] = uint8(a >> 8)
		}
	}
	return g, nil
}

type cacheKey struct {
	r  rune
	px int
}

// GlyphCache memoizes rasterized glyphs for the life of the process.
type GlyphCache struct {
	rasterizer Rasterizer
	glyphs     map[cacheKey]Glyph
}

// NewGlyphCache returns an empty cache in front of r.
func NewGlyphCache(r Rasterizer) *GlyphCache {
	return &GlyphCache{rasterizer: r, glyphs: make(map[cacheKey]Glyph)}
}

// Glyph returns the cached glyph, rasterizing on first use. A rune that
// fails to rasterize is cached as an empty glyph.
func (c *GlyphCache) Glyph(r rune, px int) Glyph {
	key := cacheKey{r: r, px: px}
	if g, ok := c.glyphs[key]; ok {
		return g
	}
	g, err := c.rasterizer.Rasterize(r, px)
	if err != nil {
		events.Render.GlyphError(r, px, err)
		g = Glyph{}
	}
	c.glyphs[key] = g
	return g
}

// Len reports how many glyphs are cached.
func (c *GlyphCache) Len() int { return len(c.glyphs) }

// Measure returns the width of text in pixels.
func (c *GlyphCache) Measure(text string, px int) int {
	width := 0
	for _, r := range text {
		width += advance(c.Glyph(r, px))
	}
	return width
}

// DrawText blends text into dst with its baseline at y and returns the
// width consumed. Runes whose index appears in highlight use hl instead of
// fg; highlight must be increasing. Pixels outside dst are dropped.
func (c *GlyphCache) DrawText(dst *image.RGBA, text string, x, baseline int, fg color.RGBA, highlight []int, hl color.RGBA, px int) int {
	cursor := x
	next := 0
	i := 0
	for _, r := range text {
		col := fg
		for next < len(highlight) && highlight[next] < i {
			next++
		}
		if next < len(highlight) && highlight[next] == i {
			col = hl
		}
		g := c.Glyph(r, px)
		gx := cursor + g.XMin
		gy := baseline - g.Height - g.YMin
		for py := 0; py < g.Height; py++ {
			row := g.Coverage[py*g.Width : (py+1)*g.Width]
			for pxl, a := range row {
				if a == 0 {
					continue
				}
				blend(dst, gx+pxl, gy+py, col, a)
			}
		}
		cursor += advance(g)
		i++
	}
	return cursor - x
}

func advance(g Glyph) int {
	return int(math.Round(g.Advance))
}
