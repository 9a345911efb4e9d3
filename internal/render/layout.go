package render

// Strip geometry in output pixels.
const (
	ItemPadding = 12
	TextInset   = ItemPadding / 2
	RightMargin = 8
	StripGap    = 8
	QueryInset  = 4
	CaretWidth  = 2
)

// StripStart is where the result strip begins on a panel of the given
// width.
func StripStart(width int) int {
	return width/4 + StripGap
}

// Strip lays result names out left to right.
type Strip struct {
	Cache     *GlyphCache
	PixelSize int
	Padding   int
	// Start is the x of the first item and Limit the largest x an item
	// may reach.
	Start int
	Limit int
}

// ItemWidth is the width a name occupies including padding.
func (s Strip) ItemWidth(name string) int {
	return s.Cache.Measure(name, s.PixelSize) + s.Padding
}

// PageEnd returns the index of the last name that fits when the page
// starts at start. The first name is always kept even if it overflows.
func (s Strip) PageEnd(names []string, start int) int {
	if start >= len(names) {
		return start
	}
	x := s.Start
	end := start
	for i := start; i < len(names); i++ {
		w := s.ItemWidth(names[i])
		if x+w > s.Limit && i > start {
			break
		}
		x += w
		end = i
	}
	return end
}
