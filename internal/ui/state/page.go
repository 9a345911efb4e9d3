package state

// Pager reports page geometry for the result strip. PageEnd returns the
// index of the last name that fits on a page starting at start; it must be
// at least start so every page holds one name.
type Pager interface {
	PageEnd(names []string, start int) int
}

// PagerFunc adapts a function to Pager.
type PagerFunc func(names []string, start int) int

// PageEnd calls f.
func (f PagerFunc) PageEnd(names []string, start int) int {
	return f(names, start)
}

// pageEnd clamps the pager's answer into [start, len-1]. Without a pager
// everything fits on one page.
func (s *Selection) pageEnd(start int) int {
	last := len(s.names) - 1
	if s.pager == nil {
		return last
	}
	end := s.pager.PageEnd(s.names, start)
	if end < start {
		end = start
	}
	if end > last {
		end = last
	}
	return end
}

// pageStartFor walks pages from the first result and returns the start of
// the page holding idx.
func (s *Selection) pageStartFor(idx int) int {
	start := 0
	for start < len(s.names) {
		end := s.pageEnd(start)
		if idx <= end {
			return start
		}
		start = end + 1
	}
	return 0
}

// reflow clamps the selection into the result list and recomputes the
// visible page so that ScrollOffset <= Selected <= LastVisible.
func (s *Selection) reflow() {
	n := len(s.names)
	if n == 0 {
		if s.Mode == ModeBrowsing {
			s.Mode = ModeEditing
		}
		s.Selected = 0
		s.ScrollOffset = 0
		s.LastVisible = 0
		s.PageSize = 0
		return
	}
	if s.Selected < 0 {
		s.Selected = 0
	}
	if s.Selected >= n {
		s.Selected = n - 1
	}
	if s.ScrollOffset < 0 || s.ScrollOffset >= n {
		s.ScrollOffset = 0
	}
	if s.Selected < s.ScrollOffset {
		s.ScrollOffset = s.pageStartFor(s.Selected)
	}
	last := s.pageEnd(s.ScrollOffset)
	if s.Selected > last {
		s.ScrollOffset = s.pageStartFor(s.Selected)
		last = s.pageEnd(s.ScrollOffset)
	}
	s.LastVisible = last
	s.PageSize = last - s.ScrollOffset + 1
}
