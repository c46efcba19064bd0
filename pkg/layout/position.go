// Package layout maps watermark and title settings onto CSS-like layout
// descriptors: edge anchors plus a composed transform.
package layout

import "strings"

// Position names an anchor point inside the canvas.
type Position string

const (
	TopLeft      Position = "top-left"
	TopCenter    Position = "top-center"
	TopRight     Position = "top-right"
	CenterLeft   Position = "center-left"
	Center       Position = "center"
	CenterRight  Position = "center-right"
	BottomLeft   Position = "bottom-left"
	BottomCenter Position = "bottom-center"
	BottomRight  Position = "bottom-right"
)

// DefaultPosition is used for any unrecognized anchor.
const DefaultPosition = BottomRight

// Positions lists all nine anchors in grid order.
var Positions = []Position{
	TopLeft, TopCenter, TopRight,
	CenterLeft, Center, CenterRight,
	BottomLeft, BottomCenter, BottomRight,
}

// FivePositions is the reduced anchor set: the corners plus center.
var FivePositions = []Position{TopLeft, TopRight, BottomLeft, BottomRight, Center}

// Valid reports whether p is one of the nine anchors.
func (p Position) Valid() bool {
	for _, q := range Positions {
		if p == q {
			return true
		}
	}
	return false
}

// Label is the human readable name of the anchor.
func (p Position) Label() string {
	switch p {
	case TopLeft:
		return "Top left"
	case TopCenter:
		return "Top center"
	case TopRight:
		return "Top right"
	case CenterLeft:
		return "Center left"
	case Center:
		return "Center"
	case CenterRight:
		return "Center right"
	case BottomLeft:
		return "Bottom left"
	case BottomCenter:
		return "Bottom center"
	case BottomRight:
		return "Bottom right"
	}
	return string(p)
}

// ParsePosition normalizes s, falling back to DefaultPosition.
func ParsePosition(s string) Position {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return DefaultPosition
	}
	return p
}

// Direction is the writing direction of the title.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// ParseDirection normalizes s, falling back to Horizontal.
func ParseDirection(s string) Direction {
	if Direction(strings.ToLower(strings.TrimSpace(s))) == Vertical {
		return Vertical
	}
	return Horizontal
}

// ScalingMode controls how the background image fills the canvas.
type ScalingMode string

const (
	Contain ScalingMode = "contain"
	Cover   ScalingMode = "cover"
)

// ParseScalingMode normalizes s, falling back to Cover.
func ParseScalingMode(s string) ScalingMode {
	if ScalingMode(strings.ToLower(strings.TrimSpace(s))) == Contain {
		return Contain
	}
	return Cover
}
