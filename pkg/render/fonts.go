package render

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontFiles lists where the font table's families are commonly installed.
// Families without an installed file fall back to Go Regular.
var fontFiles = map[string][]string{
	"Arial": {
		"arial.ttf",
		"/Library/Fonts/Arial.ttf",
		"/System/Library/Fonts/Supplemental/Arial.ttf",
		`C:\Windows\Fonts\arial.ttf`,
		"/usr/share/fonts/truetype/msttcorefonts/Arial.ttf",
		"/usr/share/fonts/truetype/msttcorefonts/arial.ttf",
	},
	"Verdana": {
		"/System/Library/Fonts/Supplemental/Verdana.ttf",
		`C:\Windows\Fonts\verdana.ttf`,
		"/usr/share/fonts/truetype/msttcorefonts/Verdana.ttf",
	},
	"Georgia": {
		"/System/Library/Fonts/Supplemental/Georgia.ttf",
		`C:\Windows\Fonts\georgia.ttf`,
		"/usr/share/fonts/truetype/msttcorefonts/Georgia.ttf",
	},
	"Tahoma": {
		"/System/Library/Fonts/Supplemental/Tahoma.ttf",
		`C:\Windows\Fonts\tahoma.ttf`,
	},
	"Impact": {
		"/System/Library/Fonts/Supplemental/Impact.ttf",
		`C:\Windows\Fonts\impact.ttf`,
		"/usr/share/fonts/truetype/msttcorefonts/Impact.ttf",
	},
	"Courier": {
		"/System/Library/Fonts/Supplemental/Courier New.ttf",
		`C:\Windows\Fonts\cour.ttf`,
		"/usr/share/fonts/truetype/msttcorefonts/cour.ttf",
	},
	"Microsoft YaHei": {
		`C:\Windows\Fonts\msyh.ttc`,
	},
	"SimHei": {
		`C:\Windows\Fonts\simhei.ttf`,
	},
}

// fontCache parses each font file once and keeps one face per size.
type fontCache struct {
	override string

	mu     sync.Mutex
	parsed map[string]*opentype.Font
	faces  map[faceKey]font.Face
}

type faceKey struct {
	path string
	size float64
}

func newFontCache(override string) *fontCache {
	return &fontCache{
		override: override,
		parsed:   make(map[string]*opentype.Font),
		faces:    make(map[faceKey]font.Face),
	}
}

// face returns a face for family at size. The override file, when set, wins
// over the family table; Go Regular is the last resort. The returned path is
// empty for Go Regular.
func (c *fontCache) face(family string, size float64) (font.Face, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var candidates []string
	if strings.TrimSpace(c.override) != "" {
		candidates = append(candidates, c.override)
	}
	candidates = append(candidates, fontFiles[family]...)
	if path := firstExistingFontPath(candidates); path != "" {
		f, err := c.loadLocked(path, size)
		if err == nil {
			return f, path, nil
		}
		if path == c.override {
			return nil, "", err
		}
	}
	f, err := c.loadLocked("", size)
	return f, "", err
}

func (c *fontCache) loadLocked(path string, size float64) (font.Face, error) {
	key := faceKey{path: path, size: size}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	fnt, ok := c.parsed[path]
	if !ok {
		data := goregular.TTF
		if path != "" {
			var err error
			data, err = os.ReadFile(path)
			if err != nil {
				return nil, err
			}
		}
		var err error
		fnt, err = opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", path, err)
		}
		c.parsed[path] = fnt
	}
	if size <= 0 {
		return nil, errors.New("font size must be positive")
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	c.faces[key] = face
	return face, nil
}

func (c *fontCache) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, f := range c.faces {
		f.Close()
		delete(c.faces, k)
	}
}

func firstExistingFontPath(candidates []string) string {
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
