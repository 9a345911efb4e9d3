package render

import (
	"image"
	"image/color"
	"math"
)

// blend mixes c into the pixel at (x, y) with coverage a:
// out = src*a + dst*(1-a) per channel. Out-of-bounds pixels are ignored.
func blend(dst *image.RGBA, x, y int, c color.RGBA, a uint8) {
	if !(image.Point{X: x, Y: y}).In(dst.Rect) {
		return
	}
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+4 : i+4]
	if a == 255 {
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, 255
		return
	}
	alpha := uint32(a)
	inv := 255 - alpha
	p[0] = uint8((uint32(c.R)*alpha + uint32(p[0])*inv + 127) / 255)
	p[1] = uint8((uint32(c.G)*alpha + uint32(p[1])*inv + 127) / 255)
	p[2] = uint8((uint32(c.B)*alpha + uint32(p[2])*inv + 127) / 255)
	p[3] = 255
}

// FillRect paints an opaque rectangle, clipped to dst.
func FillRect(dst *image.RGBA, x, y, w, h int, c color.RGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(dst.Rect)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			i := dst.PixOffset(px, py)
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, 255
		}
	}
}

// FillRectAA paints a rectangle with fractional edges, blending edge pixels
// by the share of their area the rectangle covers.
func FillRectAA(dst *image.RGBA, x, y, w, h float64, c color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	x1, y1 := int(math.Ceil(x+w)), int(math.Ceil(y+h))
	for py := y0; py < y1; py++ {
		cy := overlap(float64(py), y, y+h)
		for px := x0; px < x1; px++ {
			cov := cy * overlap(float64(px), x, x+w)
			if cov <= 0 {
				continue
			}
			blend(dst, px, py, c, uint8(math.Round(cov*255)))
		}
	}
}

// overlap is the length of [p, p+1) inside [lo, hi).
func overlap(p, lo, hi float64) float64 {
	return math.Max(0, math.Min(p+1, hi)-math.Max(p, lo))
}

// Clear fills the whole of dst with c.
func Clear(dst *image.RGBA, c color.RGBA) {
	b := dst.Rect
	FillRect(dst, b.Min.X, b.Min.Y, b.Dx(), b.Dy(), c)
}

// Downsample averages every n*n block of src into one pixel. Trailing rows
// and columns that do not fill a block are dropped.
func Downsample(src *image.RGBA, n int) *image.RGBA {
	if n <= 1 {
		return src
	}
	w, h := src.Rect.Dx()/n, src.Rect.Dy()/n
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	area := uint32(n * n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum [4]uint32
			for sy := 0; sy < n; sy++ {
				i := src.PixOffset(src.Rect.Min.X+x*n, src.Rect.Min.Y+y*n+sy)
				for sx := 0; sx < n; sx++ {
					sum[0] += uint32(src.Pix[i])
					sum[1] += uint32(src.Pix[i+1])
					sum[2] += uint32(src.Pix[i+2])
					sum[3] += uint32(src.Pix[i+3])
					i += 4
				}
			}
			j := dst.PixOffset(x, y)
			for k := 0; k < 4; k++ {
				dst.Pix[j+k] = uint8((sum[k] + area/2) / area)
			}
		}
	}
	return dst
}
