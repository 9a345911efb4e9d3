package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/atomicstack/runstrip/internal/match"
)

// Palette holds the frame colours.
type Palette struct {
	Foreground  color.RGBA
	Background  color.RGBA
	SelectionFg color.RGBA
	SelectionBg color.RGBA
	Highlight   color.RGBA
	Prompt      color.RGBA
}

// View is everything a frame shows.
type View struct {
	Query         string
	Caret         int
	Results       []match.Result
	Selected      int
	ScrollOffset  int
	PendingDelete string
}

// Layout reports which results a frame drew.
type Layout struct {
	First int
	Last  int
	Count int
}

// Renderer composes frames. PixelSize is the font size in output pixels;
// Supersample > 1 draws at that multiple and averages down.
type Renderer struct {
	Cache       *GlyphCache
	Palette     Palette
	PixelSize   int
	Supersample int
}

func (r *Renderer) scale() int {
	if r.Supersample < 1 {
		return 1
	}
	return r.Supersample
}

// Strip returns the result strip geometry for an output width, in the
// coordinates frames are drawn at.
func (r *Renderer) Strip(width int) Strip {
	n := r.scale()
	return Strip{
		Cache:     r.Cache,
		PixelSize: r.PixelSize * n,
		Padding:   ItemPadding * n,
		Start:     StripStart(width) * n,
		Limit:     (width - RightMargin) * n,
	}
}

// Render draws one frame of width w and height h.
func (r *Renderer) Render(v View, w, h int) (*image.RGBA, Layout) {
	n := r.scale()
	frame := image.NewRGBA(image.Rect(0, 0, w*n, h*n))
	Clear(frame, r.Palette.Background)

	px := r.PixelSize * n
	baseline := (h*n-px)/2 + px
	x := QueryInset*n + r.Cache.Measure("M", px)

	var layout Layout
	if v.PendingDelete != "" {
		prompt := fmt.Sprintf("Delete '%s'? (y/n)", v.PendingDelete)
		r.Cache.DrawText(frame, prompt, x, baseline, r.Palette.Prompt, nil, r.Palette.Prompt, px)
	} else {
		r.drawQuery(frame, v, x, baseline, px, n)
		layout = r.drawResults(frame, v, w, h*n, baseline, px)
	}

	return Downsample(frame, n), layout
}

func (r *Renderer) drawQuery(frame *image.RGBA, v View, x, baseline, px, n int) {
	runes := []rune(v.Query)
	caret := v.Caret
	if caret < 0 {
		caret = 0
	}
	if caret > len(runes) {
		caret = len(runes)
	}
	before := r.Cache.DrawText(frame, string(runes[:caret]), x, baseline, r.Palette.Prompt, nil, r.Palette.Prompt, px)
	caretX := x + before - n
	caretH := px + 5*n
	FillRectAA(frame, float64(caretX), float64(baseline-px-n), float64(CaretWidth*n), float64(caretH), r.Palette.Prompt)
	r.Cache.DrawText(frame, string(runes[caret:]), caretX+(CaretWidth+1)*n, baseline, r.Palette.Prompt, nil, r.Palette.Prompt, px)
}

func (r *Renderer) drawResults(frame *image.RGBA, v View, w, fullH, baseline, px int) Layout {
	if len(v.Results) == 0 || v.ScrollOffset >= len(v.Results) {
		return Layout{}
	}
	strip := r.Strip(w)
	names := make([]string, len(v.Results))
	for i, res := range v.Results {
		names[i] = res.Name
	}
	start := v.ScrollOffset
	if start < 0 {
		start = 0
	}
	last := strip.PageEnd(names, start)
	inset := TextInset * r.scale()

	x := strip.Start
	for i := start; i <= last; i++ {
		res := v.Results[i]
		width := strip.ItemWidth(res.Name)
		fg := r.Palette.Foreground
		if i == v.Selected {
			fg = r.Palette.SelectionFg
			FillRect(frame, x, 0, width, fullH, r.Palette.SelectionBg)
		}
		r.Cache.DrawText(frame, res.Name, x+inset, baseline, fg, res.MatchIndices, r.Palette.Highlight, px)
		x += width
	}
	return Layout{First: start, Last: last, Count: last - start + 1}
}

// PixelSize converts a point size and DPI scale into a pixel size.
func PixelSize(points, dpiScale float64) int {
	px := int(math.Round(points * dpiScale))
	if px < 1 {
		px = 1
	}
	return px
}
