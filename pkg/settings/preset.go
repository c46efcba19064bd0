package settings

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"wallpaper/pkg/colorsample"
	"wallpaper/pkg/layout"
)

// Preset seeds a Store from configuration. Nil fields leave the current
// value untouched. Presets are read-only input; the store never writes them
// back.
type Preset struct {
	Image     *string          `toml:"image"`
	AutoColor *bool            `toml:"auto_color"`
	Watermark *WatermarkPreset `toml:"watermark"`
	Title     *TitlePreset     `toml:"title"`
	Preview   *PreviewPreset   `toml:"preview"`
}

// WatermarkPreset mirrors WatermarkSettings.
type WatermarkPreset struct {
	Type       *string  `toml:"type"`
	Text       *string  `toml:"text"`
	Image      *string  `toml:"image"`
	FontSize   *float64 `toml:"font_size"`
	Color      *string  `toml:"color"`
	Opacity    *float64 `toml:"opacity"`
	FontFamily *string  `toml:"font_family"`
	Position   *string  `toml:"position"`
	Padding    *float64 `toml:"padding"`
	Rotation   *float64 `toml:"rotation"`
	OffsetX    *float64 `toml:"offset_x"`
	OffsetY    *float64 `toml:"offset_y"`
}

// TitlePreset mirrors TitleSettings.
type TitlePreset struct {
	Text       *string  `toml:"text"`
	FontFamily *string  `toml:"font_family"`
	FontSize   *float64 `toml:"font_size"`
	Color      *string  `toml:"color"`
	Direction  *string  `toml:"direction"`
	OffsetX    *float64 `toml:"offset_x"`
	OffsetY    *float64 `toml:"offset_y"`
}

// PreviewPreset mirrors PreviewSettings. Devices lists the ids flagged for
// the combined preview.
type PreviewPreset struct {
	SelectedDevice   *string  `toml:"selected_device"`
	ShowCombined     *bool    `toml:"show_combined"`
	ShowDeviceBorder *bool    `toml:"show_device_border"`
	BackgroundColor  *string  `toml:"background_color"`
	ScalingMode      *string  `toml:"scaling_mode"`
	Devices          []string `toml:"devices"`
}

// LoadPreset decodes a TOML preset file. Unknown keys are an error so that
// typos do not pass silently.
func LoadPreset(path string) (Preset, error) {
	var p Preset
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return Preset{}, fmt.Errorf("load preset %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Preset{}, fmt.Errorf("load preset %s: unknown keys %v", path, undecoded)
	}
	return p, nil
}

// ApplyPreset writes every non-nil preset field into the store. Image
// references become sources through colorsample.Ref. The image is applied
// before the colors, so colors named by the preset survive the color sample
// the image starts, and an empty image does not reset them.
func (s *Store) ApplyPreset(p Preset) {
	if p.AutoColor != nil {
		s.SetAutoColor(*p.AutoColor)
	}
	if p.Image != nil {
		if *p.Image == "" {
			s.SetImage(nil)
		} else {
			s.SetImage(colorsample.Ref(*p.Image))
		}
	}
	s.keepColors(p.Watermark != nil && p.Watermark.Color != nil, p.Title != nil && p.Title.Color != nil)
	if w := p.Watermark; w != nil {
		s.UpdateWatermark(func(ws *WatermarkSettings) {
			setString((*string)(&ws.Type), w.Type)
			setString(&ws.Text, w.Text)
			if w.Image != nil {
				ws.Image = colorsample.Ref(*w.Image)
			}
			setFloat(&ws.FontSize, w.FontSize)
			setString(&ws.Color, w.Color)
			setFloat(&ws.Opacity, w.Opacity)
			setString(&ws.FontFamily, w.FontFamily)
			if w.Position != nil {
				ws.Position = layout.ParsePosition(*w.Position)
			}
			setFloat(&ws.Padding, w.Padding)
			setFloat(&ws.Rotation, w.Rotation)
			setFloat(&ws.OffsetX, w.OffsetX)
			setFloat(&ws.OffsetY, w.OffsetY)
		})
	}
	if t := p.Title; t != nil {
		s.UpdateTitle(func(ts *TitleSettings) {
			setString(&ts.Text, t.Text)
			setString(&ts.FontFamily, t.FontFamily)
			setFloat(&ts.FontSize, t.FontSize)
			setString(&ts.Color, t.Color)
			if t.Direction != nil {
				ts.Direction = layout.ParseDirection(*t.Direction)
			}
			setFloat(&ts.OffsetX, t.OffsetX)
			setFloat(&ts.OffsetY, t.OffsetY)
		})
	}
	if pv := p.Preview; pv != nil {
		s.UpdatePreview(func(ps *PreviewSettings) {
			setString(&ps.SelectedDevice, pv.SelectedDevice)
			setBool(&ps.ShowCombined, pv.ShowCombined)
			setBool(&ps.ShowDeviceBorder, pv.ShowDeviceBorder)
			setString(&ps.BackgroundColor, pv.BackgroundColor)
			if pv.ScalingMode != nil {
				ps.ScalingMode = layout.ScalingMode(*pv.ScalingMode)
			}
			if pv.Devices != nil {
				want := make(map[string]bool, len(pv.Devices))
				for _, id := range pv.Devices {
					want[id] = true
				}
				for i := range ps.Devices {
					ps.Devices[i].Selected = want[ps.Devices[i].ID]
				}
			}
		})
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
