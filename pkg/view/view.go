// Package view builds the preview element tree from a settings snapshot.
package view

import (
	"image"

	"wallpaper/pkg/capture"
	"wallpaper/pkg/device"
	"wallpaper/pkg/dom"
	"wallpaper/pkg/layout"
	"wallpaper/pkg/settings"
)

// Class names the capture pipeline and drag controller look for.
const (
	ClassPreviewArea = "preview-area"
	ClassFrame       = "device-frame"
	ClassCanvas      = "preview-canvas"
	ClassContent     = "wallpaper-content"
	ClassWatermark   = "watermark"
	ClassTitle       = "title"
)

const (
	areaMargin     = 40
	areaFootroom   = 80 // room for the watermark drawn below a frame
	deviceGap      = 40
	bezelWidth     = 14
	bezelRadius    = 36
	bezelColor     = "#1f1f1f"
	areaBackground = "#f0f0f0"
	imageMarkScale = 4 // image watermark width in multiples of the font size
)

// Assets are the decoded images the tree embeds.
type Assets struct {
	Background image.Image
	Watermark  image.Image
}

// Device is the subtree built for one previewed device.
type Device struct {
	Device    device.Device
	Frame     *dom.Element // nil when no frame is drawn
	Canvas    *dom.Element
	Content   *dom.Element
	Watermark *dom.Element // nil when there is nothing to draw
	Title     *dom.Element // nil when the title is empty
}

// Preview is the whole tree.
type Preview struct {
	Area    *dom.Element
	Devices []Device
}

// Primary returns the first device subtree.
func (p *Preview) Primary() Device {
	return p.Devices[0]
}

// Build lays out the previewed devices side by side inside a preview area.
// The combined preview shows every selected device; otherwise, or when
// none is selected, only the selected device is shown.
func Build(snap settings.Snapshot, assets Assets) *Preview {
	devices := []device.Device{snap.Device}
	if snap.Preview.ShowCombined && len(snap.SelectedDevices) > 0 {
		devices = snap.SelectedDevices
	}

	area := dom.New("div", ClassPreviewArea)
	area.Background = areaBackground
	if snap.Preview.BackgroundColor != "" {
		area.Background = snap.Preview.BackgroundColor
	}

	p := &Preview{Area: area}
	x := float64(areaMargin)
	var maxH float64
	for _, d := range devices {
		dv, outer := buildDevice(snap, d, assets)
		outer.Position = &layout.Descriptor{Top: layout.Pixels(areaMargin), Left: layout.Pixels(x)}
		area.Append(outer)
		p.Devices = append(p.Devices, dv)

		x += outer.Size.W + deviceGap
		maxH = max(maxH, outer.Size.H)
	}
	area.Size = layout.Size{
		W: x - deviceGap + areaMargin,
		H: areaMargin + maxH + areaFootroom,
	}
	return p
}

// BuildExport builds the tree captured by an export in mode. WithBackground
// exports the preview as shown. WithoutBackground exports only the wallpaper
// content, where no frame is drawn, so the watermark takes its frameless
// anchor inside the content box instead of hanging below a frame.
func BuildExport(snap settings.Snapshot, assets Assets, mode capture.Mode) *Preview {
	if mode != capture.WithBackground {
		snap.Preview.ShowDeviceBorder = false
	}
	return Build(snap, assets)
}

func buildDevice(snap settings.Snapshot, d device.Device, assets Assets) (Device, *dom.Element) {
	size := layout.Size{W: float64(d.Width), H: float64(d.Height)}
	dv := Device{Device: d}

	dv.Canvas = dom.New("div", ClassCanvas)
	dv.Canvas.Size = size

	dv.Content = dom.New("div", ClassContent)
	dv.Content.Size = size
	dv.Content.Image = assets.Background
	dv.Content.Fit = snap.Preview.ScalingMode
	if assets.Background == nil {
		dv.Content.Background = snap.Preview.BackgroundColor
	}
	dv.Canvas.Append(dv.Content)

	if wm := watermarkElement(snap, d, assets.Watermark); wm != nil {
		dv.Watermark = wm
		dv.Content.Append(wm)
	}
	if snap.Title.Text != "" {
		dv.Title = titleElement(snap)
		dv.Content.Append(dv.Title)
	}

	outer := dv.Canvas
	if d.HasFrame && snap.Preview.ShowDeviceBorder {
		dv.Frame = dom.New("div", ClassFrame)
		dv.Frame.Size = layout.Size{W: size.W + 2*bezelWidth, H: size.H + 2*bezelWidth}
		dv.Frame.Border = &dom.Border{Width: bezelWidth, Color: bezelColor, Radius: bezelRadius}
		dv.Canvas.Position = &layout.Descriptor{Top: layout.Pixels(bezelWidth), Left: layout.Pixels(bezelWidth)}
		dv.Frame.Append(dv.Canvas)
		outer = dv.Frame
	}
	return dv, outer
}

func watermarkElement(snap settings.Snapshot, d device.Device, markImg image.Image) *dom.Element {
	w := snap.Watermark
	style := settings.WatermarkStyle(w, snap.Preview, d)

	el := dom.New("div", ClassWatermark)
	el.Position = &style
	el.Opacity = w.Opacity
	switch w.Type {
	case settings.TypeImage:
		if markImg == nil {
			return nil
		}
		b := markImg.Bounds()
		width := w.FontSize * imageMarkScale
		el.Size = layout.Size{W: width, H: width * float64(b.Dy()) / float64(max(1, b.Dx()))}
		el.Image = markImg
		el.Fit = layout.Contain
	default:
		if w.Text == "" {
			return nil
		}
		el.Text = &dom.Text{
			Content:    w.Text,
			FontFamily: w.FontFamily,
			FontSize:   w.FontSize,
			Color:      w.Color,
		}
	}
	return el
}

func titleElement(snap settings.Snapshot) *dom.Element {
	t := snap.Title
	style := snap.TitleStyle
	el := dom.New("div", ClassTitle)
	el.Position = &style
	el.Text = &dom.Text{
		Content:    t.Text,
		FontFamily: t.FontFamily,
		FontSize:   t.FontSize,
		Color:      t.Color,
		Vertical:   t.Direction == layout.Vertical,
	}
	return el
}
