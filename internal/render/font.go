package render

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontError reports a font family that could not be resolved.
type FontError struct {
	Family string
	Err    error
}

func (e *FontError) Error() string {
	return fmt.Sprintf("resolve font %q: %v", e.Family, e.Err)
}

func (e *FontError) Unwrap() error { return e.Err }

var embeddedFonts = map[string][]byte{
	"monospace":    gomono.TTF,
	"mono":         gomono.TTF,
	"go mono":      gomono.TTF,
	"sans":         goregular.TTF,
	"sans-serif":   goregular.TTF,
	"go":           goregular.TTF,
	"go regular":   goregular.TTF,
	"go mono bold": gomonobold.TTF,
}

// ResolveFont maps a family name to a parsed font. Known family names use
// the embedded Go fonts; a path ending in .ttf or .otf is read from fs.
func ResolveFont(fs afero.Fs, family string) (*opentype.Font, error) {
	name := strings.TrimSpace(family)
	lower := strings.ToLower(name)
	var data []byte
	switch {
	case strings.HasSuffix(lower, ".ttf"), strings.HasSuffix(lower, ".otf"):
		b, err := afero.ReadFile(fs, name)
		if err != nil {
			return nil, &FontError{Family: family, Err: err}
		}
		data = b
	default:
		b, ok := embeddedFonts[lower]
		if !ok {
			return nil, &FontError{Family: family, Err: fmt.Errorf("unknown family")}
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, &FontError{Family: family, Err: err}
	}
	return f, nil
}
