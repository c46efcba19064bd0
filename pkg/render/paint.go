package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// setOpacity scales the alpha channel of img by opacity in [0,1].
func setOpacity(img image.Image, opacity float64) *image.NRGBA {
	out := imaging.Clone(img)
	if opacity >= 1 {
		return out
	}
	opacity = math.Max(0, opacity)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i+3] = uint8(math.Round(float64(out.Pix[i+3]) * opacity))
	}
	return out
}

// pasteCentered composites src over dst centered on (cx, cy).
func pasteCentered(dst *image.NRGBA, src image.Image, cx, cy float64) {
	b := src.Bounds()
	x := int(math.Round(cx - float64(b.Dx())/2))
	y := int(math.Round(cy - float64(b.Dy())/2))
	pasteWithAlpha(dst, src, x, y)
}

func pasteWithAlpha(dst *image.NRGBA, src image.Image, x, y int) {
	r := image.Rect(x, y, x+src.Bounds().Dx(), y+src.Bounds().Dy())
	draw.DrawMask(dst, r, src, src.Bounds().Min, src, src.Bounds().Min, draw.Over)
}

// fillRect composites a solid color with the given opacity over r.
func fillRect(dst *image.NRGBA, r image.Rectangle, c color.NRGBA, opacity float64) {
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(255 * clamp01(opacity)))})
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

// flattenOnto paints img over a solid background.
func flattenOnto(img *image.NRGBA, bg color.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}

// strokeMask builds the alpha mask of a border of width bw inside a w×h box
// with rounded corners of radius. A zero-height box yields a horizontal line
// and a zero-width box a vertical one. Dashed borders alternate dash-long
// segments along each edge.
func strokeMask(w, h, bw int, radius float64, dashed bool, alpha uint8) *image.Alpha {
	switch {
	case h == 0:
		h = bw
	case w == 0:
		w = bw
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	dash := max(3, 3*bw)
	inner := math.Max(0, radius-float64(bw))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if isInCorner(x, y, w, h, radius) {
				continue
			}
			insideInner := x >= bw && x < w-bw && y >= bw && y < h-bw &&
				!isInCorner(x-bw, y-bw, w-2*bw, h-2*bw, inner)
			if insideInner {
				continue
			}
			if dashed {
				along := x
				if x < bw || x >= w-bw {
					along = y
				}
				if (along/dash)%2 == 1 {
					continue
				}
			}
			mask.SetAlpha(x, y, color.Alpha{A: alpha})
		}
	}
	return mask
}

// isInCorner reports whether (x, y) lies outside the rounded corner of
// radius in a width×height box.
func isInCorner(x, y, width, height int, radius float64) bool {
	r := int(radius)
	if r <= 0 {
		return false
	}
	var cx, cy float64
	switch {
	case x < r && y < r:
		cx, cy = radius, radius
	case x > width-r-1 && y < r:
		cx, cy = float64(width)-radius, radius
	case x < r && y > height-r-1:
		cx, cy = radius, float64(height)-radius
	case x > width-r-1 && y > height-r-1:
		cx, cy = float64(width)-radius, float64(height)-radius
	default:
		return false
	}
	dx := float64(x) + 0.5 - cx
	dy := float64(y) + 0.5 - cy
	return dx*dx+dy*dy > radius*radius
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// fillMasked composites c through mask with the mask's origin at at.
func fillMasked(dst *image.NRGBA, at image.Point, mask *image.Alpha, c color.NRGBA) {
	r := mask.Bounds().Add(at)
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}
