package display

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const upperHalf = "▀"

// EncodeHalfBlocks turns a frame into terminal lines. Each cell shows two
// pixel rows: the upper one as the foreground of an upper half block and
// the lower one as the background. An odd last row is padded with the
// row above it.
func EncodeHalfBlocks(frame *image.RGBA) string {
	if frame == nil {
		return ""
	}
	b := frame.Bounds()
	var out strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			out.WriteByte('\n')
		}
		var lastTop, lastBottom color.RGBA
		first := true
		for x := b.Min.X; x < b.Max.X; x++ {
			top := frame.RGBAAt(x, y)
			bottom := top
			if y+1 < b.Max.Y {
				bottom = frame.RGBAAt(x, y+1)
			}
			var st ansi.Style
			if first || top != lastTop {
				st = st.ForegroundColor(rgb(top))
			}
			if first || bottom != lastBottom {
				st = st.BackgroundColor(rgb(bottom))
			}
			if len(st) > 0 {
				out.WriteString(st.String())
			}
			out.WriteString(upperHalf)
			lastTop, lastBottom, first = top, bottom, false
		}
		out.WriteString(ansi.ResetStyle)
	}
	return out.String()
}

func rgb(c color.RGBA) ansi.RGBColor {
	return ansi.RGBColor{R: c.R, G: c.G, B: c.B}
}
