package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"wallpaper/pkg/dom"
	"wallpaper/pkg/layout"
)

type call struct {
	el   *dom.Element
	opts Options
}

type fakeRasterizer struct {
	mu    sync.Mutex
	calls []call
	err   error
	gates map[*dom.Element]chan struct{}
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, el *dom.Element, opts Options) (image.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{el, opts})
	gate := f.gates[el]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	w := int(el.Size.W * opts.Scale)
	h := int(el.Size.H * opts.Scale)
	return image.NewNRGBA(image.Rect(0, 0, w, h)), nil
}

type memDownloader struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memDownloader) Download(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[name] = data
	return nil
}

func previewTree() (area, canvas, content *dom.Element) {
	area = dom.New("div", "preview-area")
	area.Size = layout.Size{W: 300, H: 500}
	canvas = dom.New("div", "preview-canvas")
	canvas.Size = layout.Size{W: 200, H: 400}
	content = dom.New("div", "wallpaper-content")
	content.Size = canvas.Size
	area.Append(canvas.Append(content))
	return
}

func TestCaptureAndDownload(t *testing.T) {
	r := &fakeRasterizer{}
	d := &memDownloader{}
	p := New(Config{Rasterizer: r, Downloader: d})
	_, _, content := previewTree()

	if err := p.CaptureAndDownload(context.Background(), content, "out.png", Options{}); err != nil {
		t.Fatalf("CaptureAndDownload() error = %v", err)
	}
	if r.calls[0].opts.Scale != DefaultScale {
		t.Errorf("scale = %v, want default %v", r.calls[0].opts.Scale, DefaultScale)
	}
	img, err := png.Decode(bytes.NewReader(d.files["out.png"]))
	if err != nil {
		t.Fatalf("downloaded file is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 800 {
		t.Errorf("exported size = %dx%d, want 400x800", b.Dx(), b.Dy())
	}
}

func TestCaptureErrorPropagates(t *testing.T) {
	tainted := errors.New("tainted canvas")
	d := &memDownloader{}
	p := New(Config{Rasterizer: &fakeRasterizer{err: tainted}, Downloader: d})
	_, _, content := previewTree()

	err := p.CaptureAndDownload(context.Background(), content, "x.png", Options{})
	if !errors.Is(err, tainted) {
		t.Fatalf("error = %v, want wrapped rasterization error", err)
	}
	if len(d.files) != 0 {
		t.Error("failed capture was downloaded")
	}
	if err := p.CaptureAndDownload(context.Background(), nil, "x.png", Options{}); !errors.Is(err, ErrNoTarget) {
		t.Errorf("nil element error = %v", err)
	}
}

func TestCaptureWallpaperModes(t *testing.T) {
	r := &fakeRasterizer{}
	p := New(Config{Rasterizer: r, Downloader: &memDownloader{}})
	area, canvas, content := previewTree()
	ctx := context.Background()

	if err := p.CaptureWallpaper(ctx, area, WithBackground, "a.png"); err != nil {
		t.Fatal(err)
	}
	if err := p.CaptureWallpaper(ctx, area, WithoutBackground, "b.png"); err != nil {
		t.Fatal(err)
	}
	content.Remove()
	if err := p.CaptureWallpaper(ctx, area, WithoutBackground, "c.png"); err != nil {
		t.Fatal(err)
	}
	canvas.Remove()
	if err := p.CaptureWallpaper(ctx, area, WithoutBackground, "d.png"); err != nil {
		t.Fatal(err)
	}

	want := []call{
		{area, Options{Scale: 2}},
		{content, Options{Scale: 2, Background: Transparent}},
		{canvas, Options{Scale: 2, Background: Transparent}},
		{area, Options{Scale: 2, Background: Transparent}},
	}
	for i, w := range want {
		if r.calls[i] != w {
			t.Errorf("call %d = %+v, want %+v", i, r.calls[i], w)
		}
	}
}

func TestSupersededCaptureDiscarded(t *testing.T) {
	area, _, content := previewTree()
	gate := make(chan struct{})
	r := &fakeRasterizer{gates: map[*dom.Element]chan struct{}{area: gate}}
	d := &memDownloader{}
	p := New(Config{Rasterizer: r, Downloader: d})

	errc := make(chan error, 1)
	go func() {
		errc <- p.CaptureAndDownload(context.Background(), area, "old.png", Options{})
	}()
	for {
		r.mu.Lock()
		n := len(r.calls)
		r.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if err := p.CaptureAndDownload(context.Background(), content, "new.png", Options{}); err != nil {
		t.Fatalf("newer capture error = %v", err)
	}
	close(gate)
	if err := <-errc; !errors.Is(err, ErrSuperseded) {
		t.Errorf("stale capture error = %v, want ErrSuperseded", err)
	}
	if _, ok := d.files["old.png"]; ok {
		t.Error("stale capture was downloaded")
	}
	if _, ok := d.files["new.png"]; !ok {
		t.Error("newer capture missing")
	}
}

func TestTimestampFilename(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 2, 0, time.UTC)
	tests := []struct {
		prefix, ext, want string
	}{
		{"wallpaper", "png", "wallpaper-20240307-090502.png"},
		{"", "", "capture-20240307-090502.png"},
		{"shot", "jpg", "shot-20240307-090502.jpg"},
	}
	for _, tt := range tests {
		if got := TimestampFilename(tt.prefix, tt.ext, ts); got != tt.want {
			t.Errorf("TimestampFilename(%q, %q) = %q, want %q", tt.prefix, tt.ext, got, tt.want)
		}
	}
	p := New(Config{Now: func() time.Time { return ts }})
	if got := p.Filename("wallpaper"); got != "wallpaper-20240307-090502.png" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		0:               "0 Bytes",
		512:             "512 Bytes",
		1024:            "1 KB",
		1536:            "1.5 KB",
		5 * 1024 * 1024: "5 MB",
		3 << 30:         "3 GB",
		1234567:         "1.18 MB",
	}
	for n, want := range tests {
		if got := FormatFileSize(n); got != want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestDirDownloader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	d := Dir(dir)
	if err := d.Download(context.Background(), "a.png", []byte("x")); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.png"))
	if err != nil || string(data) != "x" {
		t.Errorf("file = %q, %v", data, err)
	}
	if err := d.Download(context.Background(), "../escape.png", nil); err == nil {
		t.Error("Download accepted a path outside the directory")
	}
}
