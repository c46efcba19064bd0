// Package settings holds the editor state: the background image reference,
// watermark, title and preview settings, and the views derived from them.
package settings

import (
	"math"

	"wallpaper/pkg/colorsample"
	"wallpaper/pkg/device"
	"wallpaper/pkg/layout"
	"wallpaper/pkg/palette"
)

// WatermarkType selects what the watermark draws.
type WatermarkType string

const (
	TypeText  WatermarkType = "text"
	TypeImage WatermarkType = "image"
)

// WatermarkSettings configures the watermark overlay.
type WatermarkSettings struct {
	Type       WatermarkType
	Text       string
	Image      colorsample.Source // used when Type is TypeImage
	FontSize   float64
	Color      string // #rrggbb
	Opacity    float64
	FontFamily string // key into the font table
	Position   layout.Position
	Padding    float64
	Rotation   float64 // degrees
	OffsetX    float64
	OffsetY    float64
}

// Placement extracts the fields the positioning engine needs.
func (w WatermarkSettings) Placement() layout.Placement {
	return layout.Placement{
		Position: w.Position,
		Padding:  w.Padding,
		Rotation: w.Rotation,
		OffsetX:  w.OffsetX,
		OffsetY:  w.OffsetY,
	}
}

// TitleSettings configures the optional title text.
type TitleSettings struct {
	Text       string
	FontFamily string
	FontSize   float64
	Color      string
	Direction  layout.Direction
	OffsetX    float64
	OffsetY    float64
}

// Placement extracts the fields the positioning engine needs.
func (t TitleSettings) Placement() layout.TitlePlacement {
	return layout.TitlePlacement{Direction: t.Direction, OffsetX: t.OffsetX, OffsetY: t.OffsetY}
}

// PreviewSettings configures the device preview.
type PreviewSettings struct {
	SelectedDevice   string
	ShowCombined     bool
	ShowDeviceBorder bool
	BackgroundColor  string // empty means none
	ScalingMode      layout.ScalingMode
	Devices          []device.Device
}

func (p PreviewSettings) clone() PreviewSettings {
	p.Devices = append([]device.Device(nil), p.Devices...)
	return p
}

const (
	DefaultWatermarkColor = "#ffffff"
	DefaultTitleColor     = "#ffffff"
)

// DefaultWatermark returns the initial watermark settings.
func DefaultWatermark() WatermarkSettings {
	return WatermarkSettings{
		Type:       TypeText,
		Text:       "Wallpaper",
		FontSize:   24,
		Color:      DefaultWatermarkColor,
		Opacity:    0.5,
		FontFamily: "Arial",
		Position:   layout.BottomRight,
		Padding:    20,
	}
}

// DefaultTitle returns the initial title settings.
func DefaultTitle() TitleSettings {
	return TitleSettings{
		FontFamily: "PingFang SC",
		FontSize:   48,
		Color:      DefaultTitleColor,
		Direction:  layout.Horizontal,
	}
}

// DefaultPreview returns the initial preview settings.
func DefaultPreview() PreviewSettings {
	return PreviewSettings{
		SelectedDevice:   device.Default().ID,
		BackgroundColor:  "#ffffff",
		ShowDeviceBorder: true,
		ScalingMode:      layout.Cover,
		Devices:          device.Catalog(),
	}
}

func normalizeWatermark(prev, next WatermarkSettings) WatermarkSettings {
	if next.Type != TypeImage {
		next.Type = TypeText
	}
	next.Color = normalizeColor(prev.Color, next.Color)
	next.Opacity = clamp(next.Opacity, 0, 1)
	if next.FontSize <= 0 || math.IsNaN(next.FontSize) {
		next.FontSize = DefaultWatermark().FontSize
	}
	if _, ok := FontByValue(next.FontFamily); !ok {
		next.FontFamily = prev.FontFamily
	}
	if !next.Position.Valid() {
		next.Position = layout.DefaultPosition
	}
	next.Padding = math.Max(0, finite(next.Padding))
	next.Rotation = finite(next.Rotation)
	next.OffsetX = finite(next.OffsetX)
	next.OffsetY = finite(next.OffsetY)
	return next
}

func normalizeTitle(prev, next TitleSettings) TitleSettings {
	next.Color = normalizeColor(prev.Color, next.Color)
	if _, ok := FontByValue(next.FontFamily); !ok {
		next.FontFamily = prev.FontFamily
	}
	if next.FontSize <= 0 || math.IsNaN(next.FontSize) {
		next.FontSize = DefaultTitle().FontSize
	}
	if next.Direction != layout.Vertical {
		next.Direction = layout.Horizontal
	}
	next.OffsetX = finite(next.OffsetX)
	next.OffsetY = finite(next.OffsetY)
	return next
}

func normalizePreview(prev, next PreviewSettings) PreviewSettings {
	if next.BackgroundColor != "" {
		next.BackgroundColor = normalizeColor(prev.BackgroundColor, next.BackgroundColor)
	}
	next.ScalingMode = layout.ParseScalingMode(string(next.ScalingMode))
	// The device list is catalog-shaped; only Selected may change.
	if len(next.Devices) != len(prev.Devices) {
		next.Devices = prev.Devices
	}
	return next.clone()
}

// normalizeColor returns next as #rrggbb, or prev when next does not parse.
func normalizeColor(prev, next string) string {
	if n, err := palette.Normalize(next); err == nil {
		return n
	}
	return prev
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
