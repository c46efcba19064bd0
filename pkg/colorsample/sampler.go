// Package colorsample computes the average color of an image and recommends
// a contrasting foreground color for text drawn on top of it.
package colorsample

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"

	"wallpaper/internal/logging"
	"wallpaper/pkg/palette"
)

const (
	// LightTextColor is recommended on dark backgrounds.
	LightTextColor = "#ffffff"
	// DarkTextColor is recommended on light images.
	DarkTextColor = "#000000"
	// NeutralTextColor is recommended on light solid colors and whenever
	// analysis fails.
	NeutralTextColor = "#333333"

	// hexCanvasSize is the side of the canvas a solid color is painted on.
	hexCanvasSize = 100
	defaultMaxSize = 100
)

var errClosed = errors.New("sampler closed")

// RGBA is an averaged color. A is in [0,1].
type RGBA struct {
	R, G, B uint8
	A       float64
}

// Result is the outcome of one analysis.
type Result struct {
	IsDark    bool
	RGBA      RGBA
	Hex       string
	TextColor string
}

// Fallback is the result returned when analysis cannot be performed.
func Fallback(hex string) Result {
	if n, err := palette.Normalize(hex); err == nil {
		hex = n
	} else {
		hex = LightTextColor
	}
	return Result{
		IsDark:    false,
		RGBA:      RGBA{R: 255, G: 255, B: 255, A: 1},
		Hex:       hex,
		TextColor: NeutralTextColor,
	}
}

// Options configures a Sampler.
type Options struct {
	Logger *slog.Logger
	// MaxSize bounds the long edge of the thumbnail that is averaged.
	// Zero means 100.
	MaxSize int
}

// Sampler analyzes images. It caches decoded images by source key until
// Close is called. A Sampler is safe for concurrent use.
type Sampler struct {
	log     *slog.Logger
	maxSize int

	mu     sync.Mutex
	cache  map[string]image.Image
	closed bool
}

// New creates a Sampler.
func New(opts Options) *Sampler {
	if opts.MaxSize <= 0 {
		opts.MaxSize = defaultMaxSize
	}
	return &Sampler{
		log:     logging.OrNop(opts.Logger),
		maxSize: opts.MaxSize,
		cache:   make(map[string]image.Image),
	}
}

// Analyze averages the colors of src. It never fails: any decode, fetch or
// cancellation error is logged and Fallback is returned.
func (s *Sampler) Analyze(ctx context.Context, src Source) Result {
	if src == nil {
		s.log.Warn("image color analysis skipped", "reason", "nil source")
		return Fallback("")
	}
	img, err := s.load(ctx, src)
	if err != nil {
		s.log.Warn("image color analysis failed", "source", src.Key(), "err", err)
		return Fallback("")
	}
	avg := s.average(img)
	res := newResult(avg)
	if res.IsDark {
		res.TextColor = LightTextColor
	} else {
		res.TextColor = DarkTextColor
	}
	s.log.Debug("image color analyzed", "source", src.Key(), "hex", res.Hex, "dark", res.IsDark)
	return res
}

// AnalyzeHex paints hex onto a small canvas and analyzes it through the same
// path as images.
func (s *Sampler) AnalyzeHex(ctx context.Context, hex string) Result {
	c, err := palette.ParseHex(hex)
	if err != nil {
		s.log.Warn("color analysis failed", "color", hex, "err", err)
		return Fallback(hex)
	}
	canvas := imaging.New(hexCanvasSize, hexCanvasSize, c)
	img, err := s.load(ctx, Image("hex:"+hex, canvas))
	if err != nil {
		s.log.Warn("color analysis failed", "color", hex, "err", err)
		return Fallback(hex)
	}
	res := newResult(s.average(img))
	if res.IsDark {
		res.TextColor = LightTextColor
	} else {
		res.TextColor = NeutralTextColor
	}
	return res
}

// ContrastTextColor returns the text color with the best contrast against a
// solid background.
func (s *Sampler) ContrastTextColor(ctx context.Context, background string) string {
	return s.AnalyzeHex(ctx, background).TextColor
}

// Close releases cached images. Later analyses return Fallback.
func (s *Sampler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	clear(s.cache)
	s.cache = nil
}

func (s *Sampler) load(ctx context.Context, src Source) (image.Image, error) {
	key := src.Key()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errClosed
	}
	if img, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return img, nil
	}
	s.mu.Unlock()

	img, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed
	}
	s.cache[key] = img
	return img, nil
}

// average returns the alpha-weighted mean color of img.
func (s *Sampler) average(img image.Image) RGBA {
	b := img.Bounds()
	var thumb *image.NRGBA
	if b.Dx() > s.maxSize || b.Dy() > s.maxSize {
		thumb = imaging.Fit(img, s.maxSize, s.maxSize, imaging.Box)
	} else {
		thumb = imaging.Clone(img)
	}

	n := len(thumb.Pix) / 4
	if n == 0 {
		return RGBA{}
	}
	rs := make([]float64, 0, n)
	gs := make([]float64, 0, n)
	bs := make([]float64, 0, n)
	ws := make([]float64, 0, n)
	var alphaSum float64
	for i := 0; i < len(thumb.Pix); i += 4 {
		rs = append(rs, float64(thumb.Pix[i]))
		gs = append(gs, float64(thumb.Pix[i+1]))
		bs = append(bs, float64(thumb.Pix[i+2]))
		a := float64(thumb.Pix[i+3])
		ws = append(ws, a)
		alphaSum += a
	}
	if alphaSum == 0 {
		return RGBA{}
	}
	return RGBA{
		R: toByte(stat.Mean(rs, ws)),
		G: toByte(stat.Mean(gs, ws)),
		B: toByte(stat.Mean(bs, ws)),
		A: alphaSum / float64(n) / 255,
	}
}

func newResult(avg RGBA) Result {
	return Result{
		IsDark: palette.IsDark(avg.R, avg.G, avg.B),
		RGBA:   avg,
		Hex:    palette.Hex(color.NRGBA{R: avg.R, G: avg.G, B: avg.B, A: 255}),
	}
}

func toByte(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
