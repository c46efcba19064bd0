package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"wallpaper/pkg/capture"
	"wallpaper/pkg/colorsample"
	"wallpaper/pkg/dom"
	"wallpaper/pkg/layout"
	"wallpaper/pkg/settings"
	"wallpaper/pkg/view"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r := New(Options{})
	t.Cleanup(r.Close)
	return r
}

func box(w, h float64, bg string) *dom.Element {
	e := dom.New("div")
	e.Size = layout.Size{W: w, H: h}
	e.Background = bg
	return e
}

func TestRasterizeScale(t *testing.T) {
	r := newRenderer(t)
	img, err := r.Rasterize(context.Background(), box(10, 6, "#ff0000"), capture.Options{Scale: 2})
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 20 || b.Dy() != 12 {
		t.Fatalf("size = %dx%d, want 20x12", b.Dx(), b.Dy())
	}
	if got := color.NRGBAModel.Convert(img.At(19, 11)).(color.NRGBA); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("pixel = %v, want red", got)
	}
}

func TestRasterizeBackgroundOverride(t *testing.T) {
	r := newRenderer(t)
	el := box(4, 4, "")

	img, err := r.Rasterize(context.Background(), el, capture.Options{Scale: 1, Background: capture.Transparent})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := img.At(1, 1).RGBA(); a != 0 {
		t.Errorf("transparent capture alpha = %d", a)
	}

	img, err = r.Rasterize(context.Background(), el, capture.Options{Scale: 1, Background: "#0000ff"})
	if err != nil {
		t.Fatal(err)
	}
	if got := color.NRGBAModel.Convert(img.At(1, 1)).(color.NRGBA); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("opaque capture pixel = %v", got)
	}

	if _, err := r.Rasterize(context.Background(), el, capture.Options{Background: "chartreuse"}); err == nil {
		t.Error("invalid background override accepted")
	}
}

func TestRasterizeChildPlacement(t *testing.T) {
	r := newRenderer(t)
	parent := box(100, 50, "#000000")
	child := box(10, 10, "#ffffff")
	d := layout.ComputePosition(layout.Placement{Position: layout.BottomRight, Padding: 5}, layout.DeviceContext{ID: "xiaohongshu"})
	child.Position = &d
	parent.Append(child)

	img, err := r.Rasterize(context.Background(), parent, capture.Options{Scale: 1})
	if err != nil {
		t.Fatal(err)
	}
	white := func(x, y int) bool {
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		return c.R == 255 && c.G == 255 && c.B == 255
	}
	if !white(90, 40) || !white(85, 35) {
		t.Error("child not drawn at bottom-right")
	}
	if white(84, 35) || white(95, 35) || white(90, 46) {
		t.Error("child drawn outside its box")
	}
}

func TestRasterizeClipsOverflow(t *testing.T) {
	r := newRenderer(t)
	parent := box(20, 20, "#000000")
	child := box(50, 50, "#ffffff")
	child.Position = &layout.Descriptor{Top: layout.Percentage(100), Left: layout.Pixels(-10)}
	parent.Append(child)
	img, err := r.Rasterize(context.Background(), parent, capture.Options{Scale: 1})
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 20 {
		t.Errorf("overflowing child changed the capture size to %v", img.Bounds())
	}
}

func TestRasterizeText(t *testing.T) {
	r := newRenderer(t)
	parent := box(200, 100, "#000000")
	mark := dom.New("div")
	mark.Text = &dom.Text{Content: "Wallpaper", FontFamily: "NoSuchFont", FontSize: 20, Color: "#ffffff"}
	d := layout.ComputePosition(layout.Placement{Position: layout.TopLeft, Padding: 4}, layout.DeviceContext{ID: "xiaohongshu"})
	mark.Position = &d
	parent.Append(mark)

	img, err := r.Rasterize(context.Background(), parent, capture.Options{Scale: 1})
	if err != nil {
		t.Fatal(err)
	}
	lit := func(r image.Rectangle) int {
		n := 0
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA); c.R > 128 {
					n++
				}
			}
		}
		return n
	}
	if lit(image.Rect(0, 0, 120, 40)) == 0 {
		t.Error("no text pixels in the top-left region")
	}
	if n := lit(image.Rect(0, 60, 200, 100)); n != 0 {
		t.Errorf("%d text pixels in the bottom region", n)
	}
}

func TestRasterizeGuideLine(t *testing.T) {
	r := newRenderer(t)
	parent := box(60, 20, "#000000")
	guide := dom.New("div")
	guide.Size = layout.Size{W: 60}
	guide.Position = &layout.Descriptor{Top: layout.Pixels(10), Left: layout.Pixels(0)}
	guide.Border = &dom.Border{Width: 1, Color: "#f4d03f", Dashed: true}
	parent.Append(guide)

	img, err := r.Rasterize(context.Background(), parent, capture.Options{Scale: 1})
	if err != nil {
		t.Fatal(err)
	}
	yellow := color.NRGBA{0xf4, 0xd0, 0x3f, 255}
	at := func(x, y int) color.NRGBA { return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA) }
	if at(0, 10) != yellow || at(3, 10) == yellow || at(6, 10) != yellow {
		t.Errorf("dash pattern = %v %v %v", at(0, 10), at(3, 10), at(6, 10))
	}
	if at(0, 9) == yellow || at(0, 11) == yellow {
		t.Error("guide line thicker than its width")
	}
}

func TestRasterizeCancelled(t *testing.T) {
	r := newRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Rasterize(ctx, box(4, 4, "#000000"), capture.Options{}); err == nil {
		t.Error("cancelled context not honored")
	}
	if _, err := r.Rasterize(context.Background(), box(0, 0, ""), capture.Options{}); err == nil {
		t.Error("empty element accepted")
	}
}

func TestStrokeMaskRoundedCorners(t *testing.T) {
	m := strokeMask(40, 40, 4, 10, false, 255)
	if m.AlphaAt(0, 0).A != 0 {
		t.Error("outer corner pixel should be cut by the radius")
	}
	if m.AlphaAt(20, 1).A != 255 {
		t.Error("top edge should be stroked")
	}
	if m.AlphaAt(20, 20).A != 0 {
		t.Error("interior should be empty")
	}
}

func TestIsInCorner(t *testing.T) {
	if isInCorner(5, 5, 100, 100, 0) {
		t.Error("zero radius has no corners")
	}
	if !isInCorner(0, 0, 100, 100, 20) || !isInCorner(99, 99, 100, 100, 20) {
		t.Error("extreme corners should be outside the rounding")
	}
	if isInCorner(50, 0, 100, 100, 20) {
		t.Error("edge midpoint is not in a corner")
	}
}

func TestExportWallpaperEndToEnd(t *testing.T) {
	bgPath := filepath.Join(t.TempDir(), "bg.png")
	if err := imaging.Save(imaging.New(64, 64, color.NRGBA{240, 240, 240, 255}), bgPath); err != nil {
		t.Fatal(err)
	}

	sampler := colorsample.New(colorsample.Options{})
	t.Cleanup(sampler.Close)
	store := settings.New(settings.Options{Sampler: sampler})
	t.Cleanup(store.Close)
	store.SelectDevice("custom")
	store.SetImage(colorsample.File(bgPath))
	store.Wait()
	if got := store.Watermark().Color; got != colorsample.DarkTextColor {
		t.Fatalf("watermark color = %q, want dark text on a light image", got)
	}

	bg, err := imaging.Open(bgPath)
	if err != nil {
		t.Fatal(err)
	}
	preview := view.Build(store.Snapshot(), view.Assets{Background: bg})

	out := t.TempDir()
	pipe := capture.New(capture.Config{Rasterizer: newRenderer(t), Downloader: capture.Dir(out)})
	if err := pipe.CaptureWallpaper(context.Background(), preview.Area, capture.WithoutBackground, "wall.png"); err != nil {
		t.Fatalf("CaptureWallpaper() error = %v", err)
	}
	if err := pipe.CaptureWallpaper(context.Background(), preview.Area, capture.WithBackground, "full.png"); err != nil {
		t.Fatalf("CaptureWallpaper() error = %v", err)
	}

	wall, err := imaging.Open(filepath.Join(out, "wall.png"))
	if err != nil {
		t.Fatal(err)
	}
	if b := wall.Bounds(); b.Dx() != 2160 || b.Dy() != 2160 {
		t.Errorf("wallpaper size = %v, want 2160x2160", b)
	}
	full, err := imaging.Open(filepath.Join(out, "full.png"))
	if err != nil {
		t.Fatal(err)
	}
	if full.Bounds().Dx() <= wall.Bounds().Dx() {
		t.Errorf("full capture %v should include the preview chrome", full.Bounds())
	}
	if _, err := os.Stat(filepath.Join(out, "wall.png")); err != nil {
		t.Error(err)
	}
}

type memDownloader map[string][]byte

func (m memDownloader) Download(_ context.Context, name string, data []byte) error {
	m[name] = data
	return nil
}

func TestExportFramedDeviceKeepsWatermark(t *testing.T) {
	export := func(mode capture.Mode, text string) image.Image {
		t.Helper()
		store := settings.New(settings.Options{})
		t.Cleanup(store.Close)
		store.UpdatePreview(func(p *settings.PreviewSettings) { p.BackgroundColor = "#204060" })
		store.UpdateWatermark(func(w *settings.WatermarkSettings) {
			w.Text, w.Color, w.Opacity, w.FontSize = text, "#ff0000", 1, 40
		})
		preview := view.BuildExport(store.Snapshot(), view.Assets{}, mode)

		out := memDownloader{}
		pipe := capture.New(capture.Config{Rasterizer: newRenderer(t), Downloader: out})
		if err := pipe.CaptureWallpaper(context.Background(), preview.Area, mode, "out.png"); err != nil {
			t.Fatalf("CaptureWallpaper(%s) error = %v", mode, err)
		}
		img, err := imaging.Decode(bytes.NewReader(out["out.png"]))
		if err != nil {
			t.Fatal(err)
		}
		return img
	}

	for _, mode := range []capture.Mode{capture.WithoutBackground, capture.WithBackground} {
		with, without := export(mode, "WATERMARK"), export(mode, "")
		if with.Bounds() != without.Bounds() {
			t.Fatalf("%s: sizes differ: %v vs %v", mode, with.Bounds(), without.Bounds())
		}
		diff := 0
		b := with.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if with.At(x, y) != without.At(x, y) {
					diff++
				}
			}
		}
		if diff == 0 {
			t.Errorf("%s: export of the default framed device has no watermark pixels", mode)
		}
	}
}
