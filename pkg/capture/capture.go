// Package capture rasterizes a rendered element subtree and hands the PNG to
// a downloader under a timestamped name.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"

	"wallpaper/internal/logging"
	"wallpaper/pkg/dom"
)

var (
	// ErrSuperseded is returned by a capture that finished after a newer
	// capture on the same pipeline had started. Its output is discarded.
	ErrSuperseded = errors.New("capture superseded by a newer capture")
	// ErrNoTarget is returned when there is no element to capture.
	ErrNoTarget = errors.New("no element to capture")
)

// DefaultScale renders at twice the CSS pixel density.
const DefaultScale = 2

// Transparent as a background override clears the canvas behind the
// element.
const Transparent = "transparent"

// Options controls rasterization.
type Options struct {
	// Scale multiplies the element size. Zero means DefaultScale.
	Scale float64
	// Background is painted behind the element: a hex color, Transparent,
	// or empty to leave the canvas transparent and rely on the element's own
	// backgrounds.
	Background string
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	return o
}

// Rasterizer renders an element subtree to an image.
type Rasterizer interface {
	Rasterize(ctx context.Context, el *dom.Element, opts Options) (image.Image, error)
}

// Downloader delivers an exported file.
type Downloader interface {
	Download(ctx context.Context, filename string, data []byte) error
}

// Mode selects what CaptureWallpaper exports.
type Mode string

const (
	// WithBackground exports the whole preview area including its chrome.
	WithBackground Mode = "withBackground"
	// WithoutBackground exports only the wallpaper content on a
	// transparent canvas.
	WithoutBackground Mode = "withoutBackground"
)

// Pipeline captures elements and downloads them. Every capture takes a new
// generation number; a capture whose generation is no longer the latest
// when rasterization finishes is discarded with ErrSuperseded.
type Pipeline struct {
	rasterizer Rasterizer
	downloader Downloader
	log        *slog.Logger
	now        func() time.Time
	gen        atomic.Uint64
}

// Config configures a Pipeline.
type Config struct {
	Rasterizer Rasterizer
	Downloader Downloader
	Logger     *slog.Logger
	// Now supplies timestamps for file names. Nil means time.Now.
	Now func() time.Time
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{
		rasterizer: cfg.Rasterizer,
		downloader: cfg.Downloader,
		log:        logging.OrNop(cfg.Logger),
		now:        cfg.Now,
	}
}

// CaptureElement rasterizes el without downloading it.
func (p *Pipeline) CaptureElement(ctx context.Context, el *dom.Element, opts Options) (image.Image, error) {
	if el == nil {
		return nil, ErrNoTarget
	}
	img, err := p.rasterizer.Rasterize(ctx, el, opts.withDefaults())
	if err != nil {
		return nil, fmt.Errorf("rasterize element: %w", err)
	}
	return img, nil
}

// CaptureAndDownload rasterizes el and downloads it as a PNG named filename.
// Rasterization and download errors are returned to the caller.
func (p *Pipeline) CaptureAndDownload(ctx context.Context, el *dom.Element, filename string, opts Options) error {
	gen := p.gen.Add(1)
	img, err := p.CaptureElement(ctx, el, opts)
	if err != nil {
		return err
	}
	if gen != p.gen.Load() {
		p.log.Debug("discarding superseded capture", "file", filename, "generation", gen)
		return ErrSuperseded
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	if err := p.downloader.Download(ctx, filename, buf.Bytes()); err != nil {
		return fmt.Errorf("download %s: %w", filename, err)
	}
	b := img.Bounds()
	p.log.Info("capture exported", "file", filename, "width", b.Dx(), "height", b.Dy(), "size", FormatFileSize(int64(buf.Len())))
	return nil
}

// CaptureWallpaper exports a preview area. WithBackground captures the area
// itself; WithoutBackground captures its first wallpaper content element
// (or preview canvas, or the area as a last resort) on a transparent
// canvas.
func (p *Pipeline) CaptureWallpaper(ctx context.Context, previewArea *dom.Element, mode Mode, filename string) error {
	if previewArea == nil {
		return ErrNoTarget
	}
	target := previewArea
	opts := Options{Scale: DefaultScale}
	if mode != WithBackground {
		if el := previewArea.Query(".wallpaper-content"); el != nil {
			target = el
		} else if el := previewArea.Query(".preview-canvas"); el != nil {
			target = el
		}
		opts.Background = Transparent
	}
	return p.CaptureAndDownload(ctx, target, filename, opts)
}

// TimestampFilename returns "<prefix>-<YYYYMMDD-HHmmss>.<ext>". Empty prefix
// and extension default to "capture" and "png".
func TimestampFilename(prefix, ext string, t time.Time) string {
	if prefix == "" {
		prefix = "capture"
	}
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("%s-%s.%s", prefix, t.Format("20060102-150405"), ext)
}

// Filename is TimestampFilename using the pipeline clock.
func (p *Pipeline) Filename(prefix string) string {
	return TimestampFilename(prefix, "png", p.now())
}

// FormatFileSize renders a byte count for humans, e.g. "1.5 KB".
func FormatFileSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + " " + units[i]
}
