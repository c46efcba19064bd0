package main

import (
	"bytes"
	"context"
	"flag"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"wallpaper/internal/logging"
	"wallpaper/pkg/colorsample"
	"wallpaper/pkg/layout"
	"wallpaper/pkg/settings"
)

func runCmd(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunUsage(t *testing.T) {
	if code, _, stderr := runCmd(t); code != 2 || !strings.Contains(stderr, "usage:") {
		t.Errorf("no command: code %d, stderr %q", code, stderr)
	}
	if code, _, _ := runCmd(t, "bogus"); code != 2 {
		t.Errorf("unknown command: code %d", code)
	}
	if code, stdout, _ := runCmd(t, "help"); code != 0 || !strings.Contains(stdout, "export") {
		t.Errorf("help: code %d", code)
	}
}

func TestDevicesCommand(t *testing.T) {
	code, stdout, _ := runCmd(t, "devices")
	if code != 0 {
		t.Fatalf("code = %d", code)
	}
	for _, want := range []string{"iphone", "390x844", "xiaohongshu", "custom"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("devices output missing %q:\n%s", want, stdout)
		}
	}
}

func TestAnalyzeCommand(t *testing.T) {
	code, stdout, _ := runCmd(t, "analyze", "-color", "#000000")
	if code != 0 {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(stdout, "dark:\ttrue") || !strings.Contains(stdout, "text color:\t#ffffff") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
	if code, _, _ := runCmd(t, "analyze"); code != 2 {
		t.Errorf("analyze without input: code %d, want 2", code)
	}
}

func TestExportValidation(t *testing.T) {
	for _, args := range [][]string{
		{"export", "-mode", "sideways"},
		{"export", "-backend", "gpu"},
		{"export", "-scale", "0"},
		{"export", "-title", "a", "-quote", "general"},
	} {
		if code, _, _ := runCmd(t, args...); code != 2 {
			t.Errorf("%v: code %d, want 2", args, code)
		}
	}
}

func TestExportSoftware(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.png")
	if err := imaging.Save(imaging.New(32, 32, color.NRGBA{200, 200, 200, 255}), bg); err != nil {
		t.Fatal(err)
	}
	code, stdout, stderr := runCmd(t, "export",
		"-in", bg, "-out", dir, "-device", "custom", "-scale", "0.25",
		"-quote", "healing", "-log-level", "error")
	if code != 0 {
		t.Fatalf("code = %d, stderr = %s", code, stderr)
	}
	name := strings.TrimSpace(stdout)
	if !strings.HasPrefix(name, "wallpaper-") || !strings.HasSuffix(name, ".png") {
		t.Fatalf("output name = %q", name)
	}
	img, err := imaging.Open(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 270 || b.Dy() != 270 {
		t.Errorf("export size = %v, want 270x270", b)
	}
}

func TestApplyFlags(t *testing.T) {
	s := settings.New(settings.Options{})
	t.Cleanup(s.Close)

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var f exportFlags
	f.register(fs)
	args := []string{"-devices", "iphone, mac", "-combined", "-position", "top-center",
		"-offset-y", "12", "-direction", "vertical", "-no-border"}
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	s.SetWatermarkOffset(5, 0)
	applyFlags(s, f, set)

	var ids []string
	for _, d := range s.SelectedDevicesList() {
		ids = append(ids, d.ID)
	}
	if strings.Join(ids, ",") != "iphone,mac" {
		t.Errorf("selected devices = %v", ids)
	}
	p := s.Preview()
	if !p.ShowCombined || p.ShowDeviceBorder {
		t.Errorf("preview = %+v", p)
	}
	if got := s.Watermark().Position; got != layout.TopCenter {
		t.Errorf("position = %v", got)
	}
	if x, y := s.WatermarkOffset(); x != 5 || y != 12 {
		t.Errorf("offset = (%v, %v), want unset x kept", x, y)
	}
	if got := s.Title().Direction; got != layout.Vertical {
		t.Errorf("direction = %v", got)
	}
	if got := s.Watermark().Text; got != settings.DefaultWatermark().Text {
		t.Errorf("unset -text changed the watermark to %q", got)
	}
}

func TestConfigureKeepsExplicitColors(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "light.png")
	if err := imaging.Save(imaging.New(16, 16, color.NRGBA{250, 250, 250, 255}), bg); err != nil {
		t.Fatal(err)
	}
	preset := filepath.Join(dir, "preset.toml")
	if err := os.WriteFile(preset, []byte("[title]\ncolor = \"#123456\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sampler := colorsample.New(colorsample.Options{})
	t.Cleanup(sampler.Close)
	s := settings.New(settings.Options{Sampler: sampler})
	t.Cleanup(s.Close)

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var f exportFlags
	f.register(fs)
	if err := fs.Parse([]string{"-in", bg, "-preset", preset, "-color", "#ffffff"}); err != nil {
		t.Fatal(err)
	}
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	if err := configure(s, f, set, logging.Nop()); err != nil {
		t.Fatal(err)
	}
	s.Wait()

	if got := s.Watermark().Color; got != "#ffffff" {
		t.Errorf("watermark color = %q, want the -color value over the light-image sample", got)
	}
	if got := s.Title().Color; got != "#123456" {
		t.Errorf("title color = %q, want the preset value", got)
	}
}

func TestConfigureAdaptsUnsetColors(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "light.png")
	if err := imaging.Save(imaging.New(16, 16, color.NRGBA{250, 250, 250, 255}), bg); err != nil {
		t.Fatal(err)
	}
	sampler := colorsample.New(colorsample.Options{})
	t.Cleanup(sampler.Close)
	s := settings.New(settings.Options{Sampler: sampler})
	t.Cleanup(s.Close)

	f := exportFlags{input: bg}
	if err := configure(s, f, map[string]bool{"in": true}, logging.Nop()); err != nil {
		t.Fatal(err)
	}
	if got := s.Watermark().Color; got != colorsample.DarkTextColor {
		t.Errorf("watermark color = %q, want adapted %q", got, colorsample.DarkTextColor)
	}
}
