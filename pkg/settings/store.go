package settings

import (
	"context"
	"log/slog"
	"sync"

	"wallpaper/internal/logging"
	"wallpaper/pkg/colorsample"
	"wallpaper/pkg/device"
	"wallpaper/pkg/layout"
)

// Change is a bit set naming the parts of the state a mutation touched.
type Change uint8

const (
	ChangeImage Change = 1 << iota
	ChangeWatermark
	ChangeTitle
	ChangePreview
)

// Has reports whether c includes every bit of other.
func (c Change) Has(other Change) bool { return c&other == other }

// Analyzer computes the contrasting text color of an image.
// *colorsample.Sampler satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, src colorsample.Source) colorsample.Result
}

// Options configures a Store.
type Options struct {
	// Sampler adapts watermark and title colors to the background image.
	// Nil disables adaptation.
	Sampler Analyzer
	Logger  *slog.Logger
}

// Store is the single source of truth for editor state. Derived views are
// computed on read under the same lock as mutations, so a read right after
// a mutation always observes it. A Store is safe for concurrent use.
//
// A color set explicitly after an image change wins over the color sample
// started by that change.
type Store struct {
	log     *slog.Logger
	sampler Analyzer

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	idle      *sync.Cond // signaled when pending drops to zero
	pending   int        // color samples in flight
	image     colorsample.Source
	imageGen  uint64
	autoColor bool
	// image generation at which each color was last set explicitly
	watermarkColorGen uint64
	titleColorGen     uint64
	watermark WatermarkSettings
	title     TitleSettings
	preview   PreviewSettings
	subs      map[int]func(Change)
	nextSub   int
}

// New creates a Store holding the default settings.
func New(opts Options) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		log:       logging.OrNop(opts.Logger),
		sampler:   opts.Sampler,
		ctx:       ctx,
		cancel:    cancel,
		autoColor: true,
		watermark: DefaultWatermark(),
		title:     DefaultTitle(),
		preview:   DefaultPreview(),
		subs:      make(map[int]func(Change)),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Subscribe registers fn to be called after every mutation. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SetImage replaces the background image reference. A nil src resets the
// watermark and title colors to their defaults. Otherwise, when automatic
// color is on, one color sample is started for this change; its result is
// applied only if no newer image was set in the meantime. Setting the
// current reference again is a no-op.
func (s *Store) SetImage(src colorsample.Source) {
	s.mu.Lock()
	if sameSource(s.image, src) {
		s.mu.Unlock()
		return
	}
	s.imageGen++
	gen := s.imageGen
	s.image = src

	if src == nil {
		s.watermark.Color = DefaultWatermarkColor
		s.title.Color = DefaultTitleColor
		s.mu.Unlock()
		s.log.Debug("image cleared, colors reset")
		s.notify(ChangeImage | ChangeWatermark | ChangeTitle)
		return
	}

	sample := s.autoColor && s.sampler != nil
	if sample {
		s.pending++
	}
	s.mu.Unlock()
	s.notify(ChangeImage)

	if sample {
		go func() {
			res := s.sampler.Analyze(s.ctx, src)
			s.applySample(gen, src, res)
		}()
	}
}

func (s *Store) applySample(gen uint64, src colorsample.Source, res colorsample.Result) {
	s.mu.Lock()
	s.pending--
	if s.pending == 0 {
		s.idle.Broadcast()
	}
	if gen != s.imageGen || !s.autoColor {
		s.mu.Unlock()
		s.log.Debug("discarding stale color sample", "source", src.Key(), "generation", gen)
		return
	}
	if s.watermarkColorGen != gen {
		s.watermark.Color = normalizeColor(s.watermark.Color, res.TextColor)
	}
	if s.titleColorGen != gen {
		s.title.Color = normalizeColor(s.title.Color, res.TextColor)
	}
	s.mu.Unlock()
	s.log.Debug("colors adapted to image", "source", src.Key(), "color", res.TextColor, "dark", res.IsDark)
	s.notify(ChangeWatermark | ChangeTitle)
}

// Image returns the current background image reference, or nil.
func (s *Store) Image() colorsample.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// SetAutoColor turns color adaptation on or off. Turning it off discards
// any sample still in flight.
func (s *Store) SetAutoColor(on bool) {
	s.mu.Lock()
	s.autoColor = on
	s.mu.Unlock()
}

// Wait blocks until no color sample is in flight. It may be called while
// other goroutines change the image.
func (s *Store) Wait() {
	s.mu.Lock()
	for s.pending > 0 {
		s.idle.Wait()
	}
	s.mu.Unlock()
}

// Close cancels in-flight color samples and waits for them to return.
// Their results are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	s.imageGen++
	s.mu.Unlock()
	s.cancel()
	s.Wait()
}

// Watermark returns a copy of the watermark settings.
func (s *Store) Watermark() WatermarkSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermark
}

// UpdateWatermark edits the watermark settings through fn. The result is
// normalized: opacity is clamped, invalid colors and fonts keep their
// previous value and unknown anchors become bottom-right.
func (s *Store) UpdateWatermark(fn func(*WatermarkSettings)) {
	s.mu.Lock()
	next := s.watermark
	fn(&next)
	if next.Color != s.watermark.Color {
		s.watermarkColorGen = s.imageGen
	}
	s.watermark = normalizeWatermark(s.watermark, next)
	s.mu.Unlock()
	s.notify(ChangeWatermark)
}

// keepColors marks the watermark and title colors as set explicitly for
// the current image, even when the value did not change.
func (s *Store) keepColors(watermark, title bool) {
	s.mu.Lock()
	if watermark {
		s.watermarkColorGen = s.imageGen
	}
	if title {
		s.titleColorGen = s.imageGen
	}
	s.mu.Unlock()
}

// SetWatermarkOffset moves the watermark.
func (s *Store) SetWatermarkOffset(x, y float64) {
	s.UpdateWatermark(func(w *WatermarkSettings) {
		w.OffsetX, w.OffsetY = x, y
	})
}

// WatermarkOffset returns the watermark offset.
func (s *Store) WatermarkOffset() (x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermark.OffsetX, s.watermark.OffsetY
}

// Title returns a copy of the title settings.
func (s *Store) Title() TitleSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// UpdateTitle edits the title settings through fn.
func (s *Store) UpdateTitle(fn func(*TitleSettings)) {
	s.mu.Lock()
	next := s.title
	fn(&next)
	if next.Color != s.title.Color {
		s.titleColorGen = s.imageGen
	}
	s.title = normalizeTitle(s.title, next)
	s.mu.Unlock()
	s.notify(ChangeTitle)
}

// SetTitleOffset moves the title.
func (s *Store) SetTitleOffset(x, y float64) {
	s.UpdateTitle(func(t *TitleSettings) {
		t.OffsetX, t.OffsetY = x, y
	})
}

// TitleOffset returns the title offset.
func (s *Store) TitleOffset() (x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title.OffsetX, s.title.OffsetY
}

// Preview returns a copy of the preview settings.
func (s *Store) Preview() PreviewSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview.clone()
}

// UpdatePreview edits the preview settings through fn.
func (s *Store) UpdatePreview(fn func(*PreviewSettings)) {
	s.mu.Lock()
	next := s.preview.clone()
	fn(&next)
	s.preview = normalizePreview(s.preview, next)
	s.mu.Unlock()
	s.notify(ChangePreview)
}

// SelectDevice makes id the previewed device. Unknown ids are stored as is;
// SelectedDeviceInfo substitutes the default device for them.
func (s *Store) SelectDevice(id string) {
	s.UpdatePreview(func(p *PreviewSettings) { p.SelectedDevice = id })
}

// ToggleDeviceSelection flips the selected flag of device id in the preview
// list. It reports whether the device was found; an unknown id is a no-op.
func (s *Store) ToggleDeviceSelection(id string) bool {
	s.mu.Lock()
	found := false
	for i := range s.preview.Devices {
		if s.preview.Devices[i].ID == id {
			s.preview.Devices[i].Selected = !s.preview.Devices[i].Selected
			found = true
			break
		}
	}
	s.mu.Unlock()
	if found {
		s.notify(ChangePreview)
	}
	return found
}

// SelectedDeviceInfo returns the previewed device, or the default device
// when the selected id does not resolve.
func (s *Store) SelectedDeviceInfo() device.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedDeviceLocked()
}

// SelectedDevicesList returns the devices flagged for the combined preview,
// in catalog order.
func (s *Store) SelectedDevicesList() []device.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedDevicesLocked()
}

// WatermarkPositionStyle returns the watermark layout for the previewed
// device.
func (s *Store) WatermarkPositionStyle() layout.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermarkStyleLocked(s.selectedDeviceLocked())
}

// WatermarkPositionStyleFor returns the watermark layout for d, as used by
// the combined preview.
func (s *Store) WatermarkPositionStyleFor(d device.Device) layout.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermarkStyleLocked(d)
}

// TitlePositionStyle returns the title layout.
func (s *Store) TitlePositionStyle() layout.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return layout.ComputeTitle(s.title.Placement())
}

// Snapshot is a consistent copy of the whole state and its derived views.
type Snapshot struct {
	Image           colorsample.Source
	Watermark       WatermarkSettings
	Title           TitleSettings
	Preview         PreviewSettings
	Device          device.Device
	SelectedDevices []device.Device
	WatermarkStyle  layout.Descriptor
	TitleStyle      layout.Descriptor
}

// Snapshot captures the state under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.selectedDeviceLocked()
	return Snapshot{
		Image:           s.image,
		Watermark:       s.watermark,
		Title:           s.title,
		Preview:         s.preview.clone(),
		Device:          d,
		SelectedDevices: s.selectedDevicesLocked(),
		WatermarkStyle:  s.watermarkStyleLocked(d),
		TitleStyle:      layout.ComputeTitle(s.title.Placement()),
	}
}

func (s *Store) selectedDeviceLocked() device.Device {
	return device.ByIDOrDefault(s.preview.SelectedDevice)
}

func (s *Store) selectedDevicesLocked() []device.Device {
	var out []device.Device
	for _, d := range s.preview.Devices {
		if d.Selected {
			out = append(out, d)
		}
	}
	return out
}

func (s *Store) watermarkStyleLocked(d device.Device) layout.Descriptor {
	return WatermarkStyle(s.watermark, s.preview, d)
}

// WatermarkStyle lays the watermark out on device d. A device counts as
// framed only while device borders are shown.
func WatermarkStyle(w WatermarkSettings, p PreviewSettings, d device.Device) layout.Descriptor {
	ctx := layout.ContextOf(d)
	ctx.HasFrame = ctx.HasFrame && p.ShowDeviceBorder
	return layout.ComputePosition(w.Placement(), ctx)
}

func (s *Store) notify(c Change) {
	s.mu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

func sameSource(a, b colorsample.Source) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Key() == b.Key()
}
