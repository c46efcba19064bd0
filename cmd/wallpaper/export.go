package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"strings"

	"wallpaper/internal/logging"
	"wallpaper/pkg/browser"
	"wallpaper/pkg/capture"
	"wallpaper/pkg/colorsample"
	"wallpaper/pkg/dom"
	"wallpaper/pkg/layout"
	"wallpaper/pkg/quotes"
	"wallpaper/pkg/render"
	"wallpaper/pkg/settings"
	"wallpaper/pkg/view"
)

type exportFlags struct {
	input, outDir, prefix string
	preset, logLevel      string
	mode, backend         string
	font, browserPath     string
	scale                 float64

	device, devices string
	combined        bool
	noBorder        bool
	background      string
	scaling         string
	autoColor       bool

	text, markImage, color, family string
	position                       string
	fontSize, opacity, padding     float64
	rotation, offsetX, offsetY     float64

	title, titleColor, titleFamily, direction string
	quote                                     string
	titleSize, titleOffsetX, titleOffsetY     float64
}

func (f *exportFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.input, "in", "", "background image path or http(s) URL")
	fs.StringVar(&f.outDir, "out", ".", "output directory")
	fs.StringVar(&f.prefix, "prefix", "wallpaper", "output file name prefix")
	fs.StringVar(&f.preset, "preset", "", "TOML preset applied before flags")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	fs.StringVar(&f.mode, "mode", string(capture.WithoutBackground), "export mode: withBackground|withoutBackground")
	fs.StringVar(&f.backend, "backend", "software", "rasterizer: software|browser")
	fs.StringVar(&f.font, "font", "", "software: font file used for all text (.ttf/.otf)")
	fs.StringVar(&f.browserPath, "browser", "", "browser: Chromium-family executable (detected when empty)")
	fs.Float64Var(&f.scale, "scale", capture.DefaultScale, "pixel density of the export")

	fs.StringVar(&f.device, "device", "", "previewed device id (see the devices command)")
	fs.StringVar(&f.devices, "devices", "", "comma-separated device ids for the combined preview")
	fs.BoolVar(&f.combined, "combined", false, "show every selected device side by side")
	fs.BoolVar(&f.noBorder, "no-border", false, "hide device frames")
	fs.StringVar(&f.background, "background", "", "preview background hex color")
	fs.StringVar(&f.scaling, "scaling", "", "image scaling: cover|contain")
	fs.BoolVar(&f.autoColor, "auto-color", true, "adapt text colors to the image")

	fs.StringVar(&f.text, "text", "", "watermark text")
	fs.StringVar(&f.markImage, "watermark-image", "", "watermark image path, replaces the text")
	fs.StringVar(&f.color, "color", "", "watermark color hex")
	fs.StringVar(&f.family, "family", "", "watermark font family")
	fs.StringVar(&f.position, "position", "", "watermark position: top-left|top-center|...|bottom-right")
	fs.Float64Var(&f.fontSize, "font-size", 0, "watermark font size")
	fs.Float64Var(&f.opacity, "opacity", 0, "watermark opacity 0..1")
	fs.Float64Var(&f.padding, "padding", 0, "watermark distance from the edges")
	fs.Float64Var(&f.rotation, "rotation", 0, "watermark rotation in degrees")
	fs.Float64Var(&f.offsetX, "offset-x", 0, "watermark horizontal drag offset")
	fs.Float64Var(&f.offsetY, "offset-y", 0, "watermark vertical drag offset")

	fs.StringVar(&f.title, "title", "", "title text")
	fs.StringVar(&f.quote, "quote", "", "pick a random title quote from a category: general|healing")
	fs.StringVar(&f.titleColor, "title-color", "", "title color hex")
	fs.StringVar(&f.titleFamily, "title-family", "", "title font family")
	fs.StringVar(&f.direction, "direction", "", "title direction: horizontal|vertical")
	fs.Float64Var(&f.titleSize, "title-size", 0, "title font size")
	fs.Float64Var(&f.titleOffsetX, "title-offset-x", 0, "title horizontal drag offset")
	fs.Float64Var(&f.titleOffsetY, "title-offset-y", 0, "title vertical drag offset")
}

func runExport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f exportFlags
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if err := validateExport(f); err != nil {
		return err
	}
	log := logging.New(f.logLevel)

	sampler := colorsample.New(colorsample.Options{Logger: log})
	defer sampler.Close()
	store := settings.New(settings.Options{Sampler: sampler, Logger: log})
	defer store.Close()

	if err := configure(store, f, set, log); err != nil {
		return err
	}

	assets, err := loadAssets(ctx, store)
	if err != nil {
		return err
	}
	snap := store.Snapshot()
	log.Debug("layout", "device", snap.Device.ID, "watermark", snap.WatermarkStyle.Style(), "title", snap.TitleStyle.Style())

	rasterizer, closeRasterizer, err := newRasterizer(f, log)
	if err != nil {
		return err
	}
	defer closeRasterizer()

	pipe := capture.New(capture.Config{
		Rasterizer: scaled{rasterizer, f.scale},
		Downloader: capture.Dir(f.outDir),
		Logger:     log,
	})
	preview := view.BuildExport(snap, assets, capture.Mode(f.mode))
	name := pipe.Filename(f.prefix)
	if err := pipe.CaptureWallpaper(ctx, preview.Area, capture.Mode(f.mode), name); err != nil {
		return err
	}
	fmt.Fprintln(stdout, name)
	return nil
}

// configure seeds the store from the preset and the flags. The image goes
// in first and its color sample settles before any explicit color is
// written, so preset and flag colors are kept.
func configure(store *settings.Store, f exportFlags, set map[string]bool, log *slog.Logger) error {
	var preset settings.Preset
	if f.preset != "" {
		p, err := settings.LoadPreset(f.preset)
		if err != nil {
			return err
		}
		preset = p
	}
	if set["auto-color"] {
		preset.AutoColor = &f.autoColor
	}
	if f.input != "" {
		if !strings.Contains(f.input, "://") && !colorsample.IsImageFile(f.input) {
			log.Warn("input does not look like an image file", "path", f.input)
		}
		preset.Image = &f.input
	}
	store.ApplyPreset(preset)
	store.Wait()
	applyFlags(store, f, set)
	return nil
}

func validateExport(f exportFlags) error {
	switch capture.Mode(f.mode) {
	case capture.WithBackground, capture.WithoutBackground:
	default:
		return usageError{fmt.Sprintf("unsupported -mode %q", f.mode)}
	}
	switch f.backend {
	case "software", "browser":
	default:
		return usageError{fmt.Sprintf("unsupported -backend %q", f.backend)}
	}
	if f.scale <= 0 {
		return usageError{"-scale must be positive"}
	}
	if strings.TrimSpace(f.outDir) == "" {
		return usageError{"missing -out"}
	}
	if f.title != "" && f.quote != "" {
		return usageError{"-title and -quote are mutually exclusive"}
	}
	return nil
}

// applyFlags writes the explicitly set flags into the store, on top of the
// defaults and any preset. -in and -auto-color are applied with the preset.
func applyFlags(s *settings.Store, f exportFlags, set map[string]bool) {
	s.UpdatePreview(func(p *settings.PreviewSettings) {
		if set["device"] {
			p.SelectedDevice = f.device
		}
		if set["combined"] {
			p.ShowCombined = f.combined
		}
		if set["no-border"] {
			p.ShowDeviceBorder = !f.noBorder
		}
		if set["background"] {
			p.BackgroundColor = f.background
		}
		if set["scaling"] {
			p.ScalingMode = layout.ParseScalingMode(f.scaling)
		}
		if set["devices"] {
			want := make(map[string]bool)
			for _, id := range strings.Split(f.devices, ",") {
				want[strings.TrimSpace(id)] = true
			}
			for i := range p.Devices {
				p.Devices[i].Selected = want[p.Devices[i].ID]
			}
		}
	})
	s.UpdateWatermark(func(w *settings.WatermarkSettings) {
		if set["text"] {
			w.Type, w.Text = settings.TypeText, f.text
		}
		if set["watermark-image"] {
			w.Type, w.Image = settings.TypeImage, colorsample.Ref(f.markImage)
		}
		if set["color"] {
			w.Color = f.color
		}
		if set["family"] {
			w.FontFamily = f.family
		}
		if set["position"] {
			w.Position = layout.ParsePosition(f.position)
		}
		if set["font-size"] {
			w.FontSize = f.fontSize
		}
		if set["opacity"] {
			w.Opacity = f.opacity
		}
		if set["padding"] {
			w.Padding = f.padding
		}
		if set["rotation"] {
			w.Rotation = f.rotation
		}
	})
	if set["offset-x"] || set["offset-y"] {
		x, y := s.WatermarkOffset()
		if set["offset-x"] {
			x = f.offsetX
		}
		if set["offset-y"] {
			y = f.offsetY
		}
		s.SetWatermarkOffset(x, y)
	}
	s.UpdateTitle(func(t *settings.TitleSettings) {
		switch {
		case set["title"]:
			t.Text = f.title
		case set["quote"]:
			t.Text = quotes.Random(quotes.Category(f.quote), nil)
		}
		if set["title-color"] {
			t.Color = f.titleColor
		}
		if set["title-family"] {
			t.FontFamily = f.titleFamily
		}
		if set["direction"] {
			t.Direction = layout.ParseDirection(f.direction)
		}
		if set["title-size"] {
			t.FontSize = f.titleSize
		}
	})
	if set["title-offset-x"] || set["title-offset-y"] {
		x, y := s.TitleOffset()
		if set["title-offset-x"] {
			x = f.titleOffsetX
		}
		if set["title-offset-y"] {
			y = f.titleOffsetY
		}
		s.SetTitleOffset(x, y)
	}
}

// loadAssets decodes the background and watermark images referenced by the
// store. A background that fails to load leaves the preview color showing.
func loadAssets(ctx context.Context, s *settings.Store) (view.Assets, error) {
	var a view.Assets
	if src := s.Image(); src != nil {
		img, err := src.Load(ctx)
		if err != nil {
			return a, fmt.Errorf("load background %s: %w", src.Key(), err)
		}
		a.Background = img
	}
	if w := s.Watermark(); w.Type == settings.TypeImage {
		if w.Image == nil {
			return a, errors.New("image watermark without an image")
		}
		img, err := w.Image.Load(ctx)
		if err != nil {
			return a, fmt.Errorf("load watermark %s: %w", w.Image.Key(), err)
		}
		a.Watermark = img
	}
	return a, nil
}

func newRasterizer(f exportFlags, log *slog.Logger) (capture.Rasterizer, func(), error) {
	if f.backend == "browser" {
		r, err := browser.New(browser.Options{Logger: log, ExecPath: f.browserPath})
		if err != nil {
			return nil, nil, err
		}
		return r, func() {}, nil
	}
	if f.font != "" {
		if _, err := os.Stat(f.font); err != nil {
			return nil, nil, fmt.Errorf("font %s: %w", f.font, err)
		}
	}
	r := render.New(render.Options{Logger: log, FontFile: f.font})
	return r, r.Close, nil
}

// scaled overrides the pixel density the pipeline asks for.
type scaled struct {
	capture.Rasterizer
	scale float64
}

func (s scaled) Rasterize(ctx context.Context, el *dom.Element, opts capture.Options) (image.Image, error) {
	opts.Scale = s.scale
	return s.Rasterizer.Rasterize(ctx, el, opts)
}
