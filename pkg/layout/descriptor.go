package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is the unit of a Length.
type Unit int

const (
	Px Unit = iota
	Percent
)

// Length is a CSS length restricted to pixels and percentages.
type Length struct {
	Value float64
	Unit  Unit
}

// Pixels returns a pixel length.
func Pixels(v float64) *Length { return &Length{Value: v, Unit: Px} }

// Percentage returns a percentage length.
func Percentage(v float64) *Length { return &Length{Value: v, Unit: Percent} }

func (l Length) String() string {
	s := strconv.FormatFloat(l.Value, 'f', -1, 64)
	if l.Unit == Percent {
		return s + "%"
	}
	return s + "px"
}

// Of resolves l against a reference extent in pixels.
func (l Length) Of(ref float64) float64 {
	if l.Unit == Percent {
		return l.Value * ref / 100
	}
	return l.Value
}

// OpKind is the kind of a transform function.
type OpKind int

const (
	OpTranslate OpKind = iota
	OpTranslateX
	OpTranslateY
	OpRotate
)

// Op is one transform function. X and Y are used by translations, Angle (in
// degrees) by rotation.
type Op struct {
	Kind  OpKind
	X, Y  Length
	Angle float64
}

func (o Op) String() string {
	switch o.Kind {
	case OpTranslateX:
		return fmt.Sprintf("translateX(%s)", o.X)
	case OpTranslateY:
		return fmt.Sprintf("translateY(%s)", o.Y)
	case OpRotate:
		return fmt.Sprintf("rotate(%sdeg)", strconv.FormatFloat(o.Angle, 'f', -1, 64))
	default:
		return fmt.Sprintf("translate(%s, %s)", o.X, o.Y)
	}
}

// Transform is an ordered list of transform functions.
type Transform []Op

func (t Transform) String() string {
	parts := make([]string, len(t))
	for i, op := range t {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}

// Rotation returns the summed rotation in degrees.
func (t Transform) Rotation() float64 {
	var deg float64
	for _, op := range t {
		if op.Kind == OpRotate {
			deg += op.Angle
		}
	}
	return deg
}

// Descriptor places an overlay relative to its containing box. Nil edges are
// unset.
type Descriptor struct {
	Top, Left, Right, Bottom *Length
	Transform                Transform
	WritingMode              string
}

// CSS renders the descriptor as CSS property/value pairs. Unset properties
// are omitted.
func (d Descriptor) CSS() map[string]string {
	css := make(map[string]string, 6)
	for name, l := range map[string]*Length{"top": d.Top, "left": d.Left, "right": d.Right, "bottom": d.Bottom} {
		if l != nil {
			css[name] = l.String()
		}
	}
	if len(d.Transform) > 0 {
		css["transform"] = d.Transform.String()
	}
	if d.WritingMode != "" {
		css["writing-mode"] = d.WritingMode
	}
	return css
}

// Style renders the descriptor as an inline style declaration with a stable
// property order.
func (d Descriptor) Style() string {
	css := d.CSS()
	var b strings.Builder
	for _, name := range []string{"top", "right", "bottom", "left", "transform", "writing-mode"} {
		if v, ok := css[name]; ok {
			fmt.Fprintf(&b, "%s: %s; ", name, v)
		}
	}
	return strings.TrimSpace(b.String())
}
