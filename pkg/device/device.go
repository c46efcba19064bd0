// Package device holds the static catalog of device presets a wallpaper can
// be previewed on.
package device

// CustomID identifies the free-form device. It never carries a frame and
// always anchors overlays at the bottom center.
const CustomID = "custom"

// DefaultIndex is the catalog entry substituted whenever a device id does
// not resolve.
const DefaultIndex = 0

// Device describes one preview preset.
type Device struct {
	ID       string // catalog key
	Name     string // display label
	Width    int    // logical canvas width in pixels
	Height   int    // logical canvas height in pixels
	HasFrame bool   // a bezel graphic is drawn outside the canvas
	Selected bool   // only meaningful inside a multi-device preview list
}

var catalog = []Device{
	{ID: "iphone", Name: "iPhone", Width: 390, Height: 844, HasFrame: true},
	{ID: "ipad", Name: "iPad", Width: 820, Height: 1180, HasFrame: true},
	{ID: "mac", Name: "Mac", Width: 1440, Height: 900, HasFrame: true},
	{ID: "xiaohongshu", Name: "Xiaohongshu", Width: 1080, Height: 1920},
	{ID: CustomID, Name: "Custom", Width: 1080, Height: 1080},
}

// Catalog returns a copy of every preset in display order. Callers own the
// returned slice and may flip Selected freely.
func Catalog() []Device {
	out := make([]Device, len(catalog))
	copy(out, catalog)
	return out
}

// ByID looks a preset up by id. The boolean is false when id is unknown.
func ByID(id string) (Device, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

// Default returns the fallback preset.
func Default() Device {
	return catalog[DefaultIndex]
}

// ByIDOrDefault resolves id, substituting Default when it is unknown.
func ByIDOrDefault(id string) Device {
	if d, ok := ByID(id); ok {
		return d
	}
	return Default()
}

// Custom reports whether d is the free-form device.
func (d Device) Custom() bool {
	return d.ID == CustomID
}
