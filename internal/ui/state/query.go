package state

// CaretPos returns the caret as a rune offset clamped to the query.
func (s *Selection) CaretPos() int {
	n := len([]rune(s.Query))
	if s.Caret < 0 {
		return 0
	}
	if s.Caret > n {
		return n
	}
	return s.Caret
}

// CaretAtEnd reports whether the caret sits after the last rune.
func (s *Selection) CaretAtEnd() bool {
	return s.CaretPos() >= len([]rune(s.Query))
}

func (s *Selection) setQuery(query string, caret int) {
	s.Query = query
	s.Caret = caret
	s.Caret = s.CaretPos()
}

// insertText inserts text at the caret.
func (s *Selection) insertText(text string) bool {
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	runes := []rune(s.Query)
	pos := s.CaretPos()
	updated := make([]rune, 0, len(runes)+len(insert))
	updated = append(updated, runes[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, runes[pos:]...)
	s.setQuery(string(updated), pos+len(insert))
	return true
}

// deleteRuneBackward removes the rune before the caret.
func (s *Selection) deleteRuneBackward() bool {
	runes := []rune(s.Query)
	pos := s.CaretPos()
	if pos == 0 || len(runes) == 0 {
		return false
	}
	updated := append(runes[:pos-1], runes[pos:]...)
	s.setQuery(string(updated), pos-1)
	return true
}

func (s *Selection) moveCaretBackward() bool {
	if s.CaretPos() == 0 {
		return false
	}
	s.Caret = s.CaretPos() - 1
	return true
}

func (s *Selection) moveCaretForward() bool {
	pos := s.CaretPos()
	if pos >= len([]rune(s.Query)) {
		return false
	}
	s.Caret = pos + 1
	return true
}
