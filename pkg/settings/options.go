package settings

import (
	"wallpaper/pkg/device"
	"wallpaper/pkg/layout"
)

// Option is a label/value pair for presentation.
type Option struct {
	Label string
	Value string
}

// Font is an entry of the font table. Value is the CSS font-family.
type Font struct {
	ID    string
	Name  string
	Value string
}

var fonts = []Font{
	{"1", "Arial", "Arial"},
	{"2", "Verdana", "Verdana"},
	{"3", "Helvetica", "Helvetica"},
	{"4", "Tahoma", "Tahoma"},
	{"5", "Times", "Times"},
	{"6", "Courier", "Courier"},
	{"7", "Georgia", "Georgia"},
	{"8", "Palatino", "Palatino"},
	{"9", "Garamond", "Garamond"},
	{"10", "Bookman", "Bookman"},
	{"11", "Comic Sans MS", "Comic Sans MS"},
	{"12", "Trebuchet MS", "Trebuchet MS"},
	{"13", "Arial Black", "Arial Black"},
	{"14", "Impact", "Impact"},
	{"15", "Lucida Sans", "Lucida Sans"},
	{"16", "Lucida Console", "Lucida Console"},
	{"17", "Monaco", "Monaco"},
	{"18", "Copperplate", "Copperplate"},
	{"19", "PingFang SC", "PingFang SC"},
	{"20", "Microsoft YaHei", "Microsoft YaHei"},
	{"21", "SimHei", "SimHei"},
	{"22", "SimSun", "SimSun"},
	{"23", "KaiTi", "KaiTi"},
	{"24", "FangSong", "FangSong"},
}

// Fonts returns a copy of the font table.
func Fonts() []Font {
	return append([]Font(nil), fonts...)
}

// FontByValue looks a font up by its family value.
func FontByValue(v string) (Font, bool) {
	for _, f := range fonts {
		if f.Value == v {
			return f, true
		}
	}
	return Font{}, false
}

// DeviceOptions lists the catalog for a device picker.
func DeviceOptions() []Option {
	cat := device.Catalog()
	out := make([]Option, len(cat))
	for i, d := range cat {
		out[i] = Option{Label: d.Name, Value: d.ID}
	}
	return out
}

// FontOptions lists the font table for a font picker.
func FontOptions() []Option {
	out := make([]Option, len(fonts))
	for i, f := range fonts {
		out[i] = Option{Label: f.Name, Value: f.Value}
	}
	return out
}

// PositionOptions lists the watermark anchors.
func PositionOptions() []Option {
	out := make([]Option, len(layout.Positions))
	for i, p := range layout.Positions {
		out[i] = Option{Label: p.Label(), Value: string(p)}
	}
	return out
}

// DirectionOptions lists the title directions.
func DirectionOptions() []Option {
	return []Option{
		{Label: "Horizontal", Value: string(layout.Horizontal)},
		{Label: "Vertical", Value: string(layout.Vertical)},
	}
}
