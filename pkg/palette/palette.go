// Package palette converts between hex color strings and image/color values
// and classifies colors as light or dark.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// ErrInvalidHex is returned for strings that are not #rgb, #rrggbb or
// #rrggbbaa.
var ErrInvalidHex = errors.New("invalid hex color")

// DarkThreshold is the YIQ luma below which a color counts as dark.
const DarkThreshold = 128

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa" (the # is optional).
func ParseHex(s string) (color.NRGBA, error) {
	str := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(str) {
	case 3:
		str = fmt.Sprintf("%c%c%c%c%c%c", str[0], str[0], str[1], str[1], str[2], str[2])
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	var c color.NRGBA
	c.A = 255
	for i, dst := range []*uint8{&c.R, &c.G, &c.B, &c.A} {
		if 2*i >= len(str) {
			break
		}
		v, ok := hexByte(str[2*i], str[2*i+1])
		if !ok {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
		}
		*dst = v
	}
	return c, nil
}

// MustParseHex is ParseHex for package-level constants.
func MustParseHex(s string) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Normalize returns s as a lowercase 6-digit "#rrggbb" string. Alpha is
// dropped.
func Normalize(s string) (string, error) {
	c, err := ParseHex(s)
	if err != nil {
		return "", err
	}
	return Hex(c), nil
}

// Hex formats the RGB part of c as "#rrggbb".
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// Luma returns the YIQ brightness of an RGB triple in [0,255].
func Luma(r, g, b uint8) float64 {
	return (299*float64(r) + 587*float64(g) + 114*float64(b)) / 1000
}

// IsDark reports whether the color reads as dark.
func IsDark(r, g, b uint8) bool {
	return Luma(r, g, b) < DarkThreshold
}

func hexByte(hi, lo byte) (uint8, bool) {
	h, ok1 := hexNibble(hi)
	l, ok2 := hexNibble(lo)
	return h<<4 | l, ok1 && ok2
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
