package layout

// Size is a box extent in pixels.
type Size struct {
	W, H float64
}

// Box is a resolved overlay: the top-left corner of the unrotated box
// relative to the container origin, its size, and the rotation in degrees
// about its center.
type Box struct {
	X, Y, W, H float64
	Rotation   float64
}

// Resolve computes the pixel geometry of a box of the given size placed in
// container by d. Edge lengths resolve against the container, translations
// against the box itself. Translations are applied in the unrotated frame.
func Resolve(d Descriptor, container, box Size) Box {
	b := Box{W: box.W, H: box.H}
	switch {
	case d.Left != nil:
		b.X = d.Left.Of(container.W)
	case d.Right != nil:
		b.X = container.W - d.Right.Of(container.W) - box.W
	}
	switch {
	case d.Top != nil:
		b.Y = d.Top.Of(container.H)
	case d.Bottom != nil:
		b.Y = container.H - d.Bottom.Of(container.H) - box.H
	}
	for _, op := range d.Transform {
		switch op.Kind {
		case OpTranslate:
			b.X += op.X.Of(box.W)
			b.Y += op.Y.Of(box.H)
		case OpTranslateX:
			b.X += op.X.Of(box.W)
		case OpTranslateY:
			b.Y += op.Y.Of(box.H)
		case OpRotate:
			b.Rotation += op.Angle
		}
	}
	return b
}
