// Package input decodes platform key events into logical launcher actions.
//
// Key codes follow the X11 convention (evdev scan code + 8) for a US layout,
// which is what every supported display surface reports or is translated to.
package input

// Key is a logical key.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyLeft
	KeyRight
	KeyBackspace
	KeyTab
	KeyDelete
	KeyEnter
	KeyEscape
)

var keyNames = map[Key]string{
	KeyNone:      "none",
	KeyRune:      "rune",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyBackspace: "backspace",
	KeyTab:       "tab",
	KeyDelete:    "delete",
	KeyEnter:     "enter",
	KeyEscape:    "escape",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// Modifiers is the modifier bit mask delivered with a key event.
type Modifiers uint16

const (
	ModShift   Modifiers = 1 << 0
	ModLock    Modifiers = 1 << 1
	ModControl Modifiers = 1 << 2
)

// Action is one decoded key press. Rune is set only for KeyRune.
type Action struct {
	Key  Key
	Rune rune
}

// RuneAction is shorthand for a character action.
func RuneAction(r rune) Action {
	return Action{Key: KeyRune, Rune: r}
}

// Key codes of the non-printing keys.
const (
	CodeEscape    uint8 = 9
	CodeBackspace uint8 = 22
	CodeTab       uint8 = 23
	CodeEnter     uint8 = 36
	CodeControlL  uint8 = 37
	CodeShiftL    uint8 = 50
	CodeShiftR    uint8 = 62
	CodeCapsLock  uint8 = 66
	CodeKPEnter   uint8 = 104
	CodeControlR  uint8 = 105
	CodeLeft      uint8 = 113
	CodeRight     uint8 = 114
	CodeDelete    uint8 = 119
)

// printable holds the unshifted and shifted character for each key code.
var printable = map[uint8][2]rune{
	10: {'1', '!'}, 11: {'2', '@'}, 12: {'3', '#'}, 13: {'4', '$'}, 14: {'5', '%'},
	15: {'6', '^'}, 16: {'7', '&'}, 17: {'8', '*'}, 18: {'9', '('}, 19: {'0', ')'},
	20: {'-', '_'}, 21: {'=', '+'},
	24: {'q', 'Q'}, 25: {'w', 'W'}, 26: {'e', 'E'}, 27: {'r', 'R'}, 28: {'t', 'T'},
	29: {'y', 'Y'}, 30: {'u', 'U'}, 31: {'i', 'I'}, 32: {'o', 'O'}, 33: {'p', 'P'},
	34: {'[', '{'}, 35: {']', '}'},
	38: {'a', 'A'}, 39: {'s', 'S'}, 40: {'d', 'D'}, 41: {'f', 'F'}, 42: {'g', 'G'},
	43: {'h', 'H'}, 44: {'j', 'J'}, 45: {'k', 'K'}, 46: {'l', 'L'},
	47: {';', ':'}, 48: {'\'', '"'}, 49: {'`', '~'}, 51: {'\\', '|'},
	52: {'z', 'Z'}, 53: {'x', 'X'}, 54: {'c', 'C'}, 55: {'v', 'V'}, 56: {'b', 'B'},
	57: {'n', 'N'}, 58: {'m', 'M'},
	59: {',', '<'}, 60: {'.', '>'}, 61: {'/', '?'},
	65: {' ', ' '},
}

var named = map[uint8]Key{
	CodeEscape:    KeyEscape,
	CodeBackspace: KeyBackspace,
	CodeTab:       KeyTab,
	CodeEnter:     KeyEnter,
	CodeKPEnter:   KeyEnter,
	CodeLeft:      KeyLeft,
	CodeRight:     KeyRight,
	CodeDelete:    KeyDelete,
}

type chord struct {
	code uint8
	mods Modifiers
}

var reverse = func() map[rune]chord {
	out := make(map[rune]chord, len(printable)*2)
	for code, pair := range printable {
		out[pair[0]] = chord{code: code}
		if pair[1] != pair[0] {
			out[pair[1]] = chord{code: code, mods: ModShift}
		}
	}
	return out
}()

// CodeFor returns the key code and modifiers that produce r, for surfaces
// that report characters rather than key codes.
func CodeFor(r rune) (uint8, Modifiers, bool) {
	entry, ok := reverse[r]
	if !ok {
		return 0, 0, false
	}
	return entry.code, entry.mods, true
}
