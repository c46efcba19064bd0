package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"wallpaper/pkg/dom"
)

// textSize returns the pixel extent of t set in face: one line high, or one
// line per rune when vertical.
func textSize(face font.Face, t *dom.Text) (w, h int) {
	m := face.Metrics()
	line := (m.Ascent + m.Descent).Ceil()
	if !t.Vertical {
		return font.MeasureString(face, t.Content).Ceil(), line
	}
	runes := []rune(t.Content)
	for _, r := range runes {
		w = max(w, font.MeasureString(face, string(r)).Ceil())
	}
	return w, line * len(runes)
}

// textTile draws t onto a transparent tile sized by textSize. Vertical text
// is stacked one centered rune per line.
func textTile(face font.Face, t *dom.Text, col color.NRGBA) *image.NRGBA {
	w, h := textSize(face, t)
	tile := image.NewNRGBA(image.Rect(0, 0, max(1, w), max(1, h)))
	m := face.Metrics()
	if !t.Vertical {
		drawTextAt(tile, face, 0, 0, t.Content, col)
		return tile
	}
	line := (m.Ascent + m.Descent).Ceil()
	for i, r := range []rune(t.Content) {
		s := string(r)
		x := (w - font.MeasureString(face, s).Ceil()) / 2
		drawTextAt(tile, face, x, i*line, s, col)
	}
	return tile
}

func drawTextAt(dst *image.NRGBA, face font.Face, x, y int, text string, col color.NRGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x),
			Y: fixed.I(y) + face.Metrics().Ascent,
		},
	}
	d.DrawString(text)
}
