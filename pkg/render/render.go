// Package render rasterizes element trees in process, without a browser.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"

	"wallpaper/internal/logging"
	"wallpaper/pkg/capture"
	"wallpaper/pkg/dom"
	"wallpaper/pkg/layout"
	"wallpaper/pkg/palette"
)

// Options configures a Renderer.
type Options struct {
	Logger *slog.Logger
	// FontFile, when set, is used for every font family.
	FontFile string
}

// Renderer draws element trees with imaging and x/image/font. It implements
// capture.Rasterizer. Font faces are shared, so calls must not overlap.
type Renderer struct {
	log   *slog.Logger
	fonts *fontCache
}

var _ capture.Rasterizer = (*Renderer)(nil)

// New creates a Renderer.
func New(opts Options) *Renderer {
	return &Renderer{
		log:   logging.OrNop(opts.Logger),
		fonts: newFontCache(opts.FontFile),
	}
}

// Close releases cached font faces.
func (r *Renderer) Close() {
	r.fonts.close()
}

// Rasterize draws el and its descendants at opts.Scale. Descendants that
// overflow el are clipped to its box.
func (r *Renderer) Rasterize(ctx context.Context, el *dom.Element, opts capture.Options) (image.Image, error) {
	if el == nil {
		return nil, capture.ErrNoTarget
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	size, err := r.boxSize(el, scale)
	if err != nil {
		return nil, err
	}
	if size.W <= 0 || size.H <= 0 {
		return nil, errors.New("element has an empty box")
	}
	w := int(math.Round(size.W * scale))
	h := int(math.Round(size.H * scale))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	if err := r.draw(ctx, dst, el, layout.Box{W: size.W, H: size.H}, scale, 1); err != nil {
		return nil, err
	}

	switch bg := opts.Background; bg {
	case "", capture.Transparent:
		return dst, nil
	default:
		c, err := palette.ParseHex(bg)
		if err != nil {
			return nil, fmt.Errorf("background override: %w", err)
		}
		return flattenOnto(dst, c), nil
	}
}

// draw paints e into box (CSS pixels, relative to the capture origin) and
// recurses into its children.
func (r *Renderer) draw(ctx context.Context, dst *image.NRGBA, e *dom.Element, box layout.Box, scale, opacity float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opacity *= clamp01(e.Opacity)
	px := pixelRect(box, scale)

	if e.Background != "" {
		c, err := palette.ParseHex(e.Background)
		if err != nil {
			r.log.Warn("skipping invalid background", "color", e.Background, "err", err)
		} else {
			fillRect(dst, px, c, opacity)
		}
	}
	if e.Image != nil && px.Dx() > 0 && px.Dy() > 0 {
		var fitted *image.NRGBA
		if e.Fit == layout.Contain {
			fitted = imaging.Fit(e.Image, px.Dx(), px.Dy(), imaging.Lanczos)
		} else {
			fitted = imaging.Fill(e.Image, px.Dx(), px.Dy(), imaging.Center, imaging.Lanczos)
		}
		r.paste(dst, fitted, box, scale, opacity)
	}
	if e.Text != nil && e.Text.Content != "" {
		if err := r.drawText(dst, e.Text, box, scale, opacity); err != nil {
			return err
		}
	}
	if b := e.Border; b != nil && b.Width > 0 {
		c, err := palette.ParseHex(b.Color)
		if err != nil {
			r.log.Warn("skipping invalid border", "color", b.Color, "err", err)
		} else {
			bw := max(1, int(math.Round(b.Width*scale)))
			mask := strokeMask(px.Dx(), px.Dy(), bw, b.Radius*scale, b.Dashed, uint8(math.Round(255*opacity)))
			fillMasked(dst, px.Min, mask, c)
		}
	}

	for _, c := range e.Children() {
		size, err := r.boxSize(c, scale)
		if err != nil {
			return err
		}
		var cb layout.Box
		if c.Position != nil {
			cb = layout.Resolve(*c.Position, layout.Size{W: box.W, H: box.H}, size)
		} else {
			cb = layout.Box{W: size.W, H: size.H}
		}
		cb.X += box.X
		cb.Y += box.Y
		if err := r.draw(ctx, dst, c, cb, scale, opacity); err != nil {
			return err
		}
	}
	return nil
}

// boxSize returns the element size in CSS pixels, measuring text for
// content-sized elements.
func (r *Renderer) boxSize(e *dom.Element, scale float64) (layout.Size, error) {
	size := e.Size
	if (size.W > 0 && size.H > 0) || e.Text == nil || e.Text.Content == "" {
		return size, nil
	}
	face, _, err := r.fonts.face(e.Text.FontFamily, e.Text.FontSize*scale)
	if err != nil {
		return layout.Size{}, fmt.Errorf("load font %q: %w", e.Text.FontFamily, err)
	}
	w, h := textSize(face, e.Text)
	if size.W <= 0 {
		size.W = float64(w) / scale
	}
	if size.H <= 0 {
		size.H = float64(h) / scale
	}
	return size, nil
}

func (r *Renderer) drawText(dst *image.NRGBA, t *dom.Text, box layout.Box, scale, opacity float64) error {
	col, err := palette.ParseHex(t.Color)
	if err != nil {
		r.log.Warn("invalid text color, using black", "color", t.Color, "err", err)
		col = color.NRGBA{A: 255}
	}
	face, path, err := r.fonts.face(t.FontFamily, t.FontSize*scale)
	if err != nil {
		return fmt.Errorf("load font %q: %w", t.FontFamily, err)
	}
	if path == "" {
		r.log.Debug("font family not installed, using Go Regular", "family", t.FontFamily)
	}
	r.paste(dst, textTile(face, t, col), box, scale, opacity)
	return nil
}

// paste composites src at the center of box, applying the box rotation
// (clockwise, as CSS does) and opacity.
func (r *Renderer) paste(dst *image.NRGBA, src image.Image, box layout.Box, scale, opacity float64) {
	img := setOpacity(src, opacity)
	if box.Rotation != 0 {
		img = imaging.Rotate(img, -box.Rotation, color.NRGBA{})
	}
	cx := (box.X + box.W/2) * scale
	cy := (box.Y + box.H/2) * scale
	pasteCentered(dst, img, cx, cy)
}

func pixelRect(b layout.Box, scale float64) image.Rectangle {
	return image.Rect(
		int(math.Round(b.X*scale)),
		int(math.Round(b.Y*scale)),
		int(math.Round((b.X+b.W)*scale)),
		int(math.Round((b.Y+b.H)*scale)),
	)
}
