package layout

import "wallpaper/pkg/device"

// Placement carries the watermark fields that influence layout.
type Placement struct {
	Position Position
	Padding  float64
	Rotation float64 // degrees
	OffsetX  float64
	OffsetY  float64
}

// DeviceContext is the part of the selected device that influences layout.
type DeviceContext struct {
	ID       string
	HasFrame bool
}

// ContextOf builds the layout context of a catalog device.
func ContextOf(d device.Device) DeviceContext {
	return DeviceContext{ID: d.ID, HasFrame: d.HasFrame}
}

// ComputePosition places a watermark. A framed device always places it below
// the frame, horizontally centered, whatever the requested anchor; the
// custom device always anchors bottom center. Otherwise the anchor decides,
// with unknown anchors treated as bottom-right.
func ComputePosition(p Placement, dev DeviceContext) Descriptor {
	switch {
	case dev.HasFrame && dev.ID != device.CustomID:
		return Descriptor{
			Top:       Percentage(100),
			Left:      Percentage(50),
			Transform: compose(p, translateX(-50)),
		}
	case dev.ID == device.CustomID:
		return Descriptor{
			Bottom:    pad(p),
			Left:      Percentage(50),
			Transform: compose(p, translateX(-50)),
		}
	}

	switch p.Position {
	case TopLeft:
		return Descriptor{Top: pad(p), Left: pad(p), Transform: compose(p)}
	case TopCenter:
		return Descriptor{Top: pad(p), Left: Percentage(50), Transform: compose(p, translateX(-50))}
	case TopRight:
		return Descriptor{Top: pad(p), Right: pad(p), Transform: compose(p)}
	case CenterLeft:
		return Descriptor{Top: Percentage(50), Left: pad(p), Transform: compose(p, translateY(-50))}
	case Center:
		return Descriptor{
			Top:       Percentage(50),
			Left:      Percentage(50),
			Transform: compose(p, Op{Kind: OpTranslate, X: Length{-50, Percent}, Y: Length{-50, Percent}}),
		}
	case CenterRight:
		return Descriptor{Top: Percentage(50), Right: pad(p), Transform: compose(p, translateY(-50))}
	case BottomLeft:
		return Descriptor{Bottom: pad(p), Left: pad(p), Transform: compose(p)}
	case BottomCenter:
		return Descriptor{Bottom: pad(p), Left: Percentage(50), Transform: compose(p, translateX(-50))}
	default:
		return Descriptor{Bottom: pad(p), Right: pad(p), Transform: compose(p)}
	}
}

// TitlePlacement carries the title fields that influence layout.
type TitlePlacement struct {
	Direction Direction
	OffsetX   float64
	OffsetY   float64
}

// ComputeTitle centers the title in the canvas and shifts it by its offset.
// Vertical titles are set top-to-bottom.
func ComputeTitle(t TitlePlacement) Descriptor {
	tr := Transform{{Kind: OpTranslate, X: Length{-50, Percent}, Y: Length{-50, Percent}}}
	if t.OffsetX != 0 || t.OffsetY != 0 {
		tr = append(tr, Op{Kind: OpTranslate, X: Length{t.OffsetX, Px}, Y: Length{t.OffsetY, Px}})
	}
	d := Descriptor{Top: Percentage(50), Left: Percentage(50), Transform: tr}
	if t.Direction == Vertical {
		d.WritingMode = "vertical-rl"
	}
	return d
}

// compose appends the user offset (when non-zero) and rotation to the fixed
// alignment ops.
func compose(p Placement, align ...Op) Transform {
	t := make(Transform, 0, len(align)+2)
	t = append(t, align...)
	if p.OffsetX != 0 || p.OffsetY != 0 {
		t = append(t, Op{Kind: OpTranslate, X: Length{p.OffsetX, Px}, Y: Length{p.OffsetY, Px}})
	}
	return append(t, Op{Kind: OpRotate, Angle: p.Rotation})
}

func translateX(pct float64) Op { return Op{Kind: OpTranslateX, X: Length{pct, Percent}} }

func translateY(pct float64) Op { return Op{Kind: OpTranslateY, Y: Length{pct, Percent}} }

func pad(p Placement) *Length {
	if p.Padding < 0 {
		return Pixels(0)
	}
	return Pixels(p.Padding)
}
