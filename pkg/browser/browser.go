// Package browser rasterizes element trees with a headless Chromium-family
// browser driven through chromedp.
package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/disintegration/imaging"

	"wallpaper/internal/logging"
	"wallpaper/pkg/capture"
	"wallpaper/pkg/dom"
	"wallpaper/pkg/palette"
)

// ErrNoBrowser is returned when no Chromium-family browser is installed.
var ErrNoBrowser = errors.New("no Chromium-family browser found (Chrome / Edge / Chromium)")

// Options configures a Rasterizer.
type Options struct {
	Logger *slog.Logger
	// ExecPath overrides browser detection.
	ExecPath string
}

// Rasterizer renders an element by loading the HTML of its tree into a
// fresh headless browser and screenshotting the element's node.
type Rasterizer struct {
	log      *slog.Logger
	execPath string
}

var _ capture.Rasterizer = (*Rasterizer)(nil)

// New resolves the browser executable and returns a Rasterizer.
func New(opts Options) (*Rasterizer, error) {
	path := opts.ExecPath
	if path == "" {
		var err error
		if path, err = DetectBrowserPath(); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("browser %s: %w", path, err)
	}
	log := logging.OrNop(opts.Logger)
	log.Debug("using browser", "path", path)
	return &Rasterizer{log: log, execPath: path}, nil
}

// Rasterize implements capture.Rasterizer. The whole tree of el is loaded so
// inherited layout matches the preview; only el's node is captured.
func (r *Rasterizer) Rasterize(ctx context.Context, el *dom.Element, opts capture.Options) (image.Image, error) {
	if el == nil {
		return nil, capture.ErrNoTarget
	}
	root := el.Root()
	doc, err := dom.HTML(root)
	if err != nil {
		return nil, err
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	var bg *cdp.RGBA
	switch opts.Background {
	case "":
	case capture.Transparent:
		bg = transparent()
	default:
		if _, err := palette.ParseHex(opts.Background); err != nil {
			return nil, fmt.Errorf("background override: %w", err)
		}
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(r.execPath)...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	w, h := viewport(root)
	sel := dom.NodeSelector(el)
	var buf []byte
	actions := []chromedp.Action{
		chromedp.EmulateViewport(w, h),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
	}
	if bg != nil {
		actions = append(actions, emulation.SetDefaultBackgroundColorOverride().WithColor(bg))
	}
	actions = append(actions,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.ScreenshotScale(sel, scale, &buf, chromedp.ByQuery),
	)
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, fmt.Errorf("browser screenshot: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	r.log.Debug("browser screenshot taken", "selector", sel, "bytes", len(buf))
	return withBackground(img, opts.Background)
}

func allocatorOptions(execPath string) []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Headless,
	)
}

// transparent returns the page background used for transparent captures.
// The protocol omits a zero alpha and defaults it to opaque, so the smallest
// alpha that still rounds to zero is sent instead.
func transparent() *cdp.RGBA {
	return &cdp.RGBA{A: 0.001}
}

// viewport returns a viewport large enough to lay out root unscrolled.
func viewport(root *dom.Element) (w, h int64) {
	w = int64(math.Ceil(root.Size.W))
	h = int64(math.Ceil(root.Size.H))
	return max(w, 1), max(h, 1)
}

// withBackground flattens img onto a hex background override. Empty and
// transparent overrides leave the screenshot unchanged.
func withBackground(img image.Image, bg string) (image.Image, error) {
	if bg == "" || bg == capture.Transparent {
		return img, nil
	}
	c, err := palette.ParseHex(bg)
	if err != nil {
		return nil, fmt.Errorf("background override: %w", err)
	}
	b := img.Bounds()
	return imaging.Overlay(imaging.New(b.Dx(), b.Dy(), c), img, image.Pt(0, 0), 1), nil
}

// DetectBrowserPath returns the first installed Chromium-family browser.
func DetectBrowserPath() (string, error) {
	for _, p := range candidatePaths(runtime.GOOS, os.Getenv) {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrNoBrowser
}

func candidatePaths(goos string, getenv func(string) string) []string {
	switch goos {
	case "windows":
		return []string{
			filepath.Join(getenv("PROGRAMFILES(X86)"), "Microsoft", "Edge", "Application", "msedge.exe"),
			filepath.Join(getenv("PROGRAMFILES"), "Microsoft", "Edge", "Application", "msedge.exe"),
			filepath.Join(getenv("PROGRAMFILES(X86)"), "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(getenv("PROGRAMFILES"), "Google", "Chrome", "Application", "chrome.exe"),
		}
	case "darwin":
		return []string{
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "linux":
		return []string{
			"/usr/bin/microsoft-edge",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
		}
	}
	return nil
}
