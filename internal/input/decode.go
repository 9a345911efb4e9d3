package input

// Decode maps one key code and modifier mask to an action. Letters are upper
// case when exactly one of Shift and CapsLock is active; other printable keys
// only honour Shift. Control+c and Control+[ decode to Escape, other Control
// chords on printable keys do nothing. Unknown codes yield KeyNone.
func Decode(code uint8, mods Modifiers) Action {
	if key, ok := named[code]; ok {
		return Action{Key: key}
	}
	pair, ok := printable[code]
	if !ok {
		return Action{}
	}
	if mods&ModControl != 0 {
		if pair[0] == 'c' || pair[0] == '[' {
			return Action{Key: KeyEscape}
		}
		return Action{}
	}
	shift := mods&ModShift != 0
	if isLetter(pair[0]) && mods&ModLock != 0 {
		shift = !shift
	}
	if shift {
		return RuneAction(pair[1])
	}
	return RuneAction(pair[0])
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// Decoder composes live modifier state for surfaces whose events do not
// carry reliable modifier bits.
type Decoder struct {
	shiftL, shiftR bool
	ctrlL, ctrlR   bool
	capsLock       bool
}

// KeyDown records modifier presses and decodes everything else. The
// event's own modifier bits are combined with the tracked state.
func (d *Decoder) KeyDown(code uint8, mods Modifiers) Action {
	switch code {
	case CodeShiftL:
		d.shiftL = true
		return Action{}
	case CodeShiftR:
		d.shiftR = true
		return Action{}
	case CodeControlL:
		d.ctrlL = true
		return Action{}
	case CodeControlR:
		d.ctrlR = true
		return Action{}
	case CodeCapsLock:
		d.capsLock = !d.capsLock
		return Action{}
	}
	return Decode(code, mods|d.Modifiers())
}

// KeyUp releases held modifiers.
func (d *Decoder) KeyUp(code uint8) {
	switch code {
	case CodeShiftL:
		d.shiftL = false
	case CodeShiftR:
		d.shiftR = false
	case CodeControlL:
		d.ctrlL = false
	case CodeControlR:
		d.ctrlR = false
	}
}

// Modifiers returns the tracked modifier mask.
func (d *Decoder) Modifiers() Modifiers {
	var mods Modifiers
	if d.shiftL || d.shiftR {
		mods |= ModShift
	}
	if d.capsLock {
		mods |= ModLock
	}
	if d.ctrlL || d.ctrlR {
		mods |= ModControl
	}
	return mods
}

// Reset forgets all tracked state, for example after the surface loses
// focus and key releases may have been missed.
func (d *Decoder) Reset() {
	*d = Decoder{}
}
