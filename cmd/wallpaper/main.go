package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"wallpaper/internal/logging"
	"wallpaper/pkg/capture"
	"wallpaper/pkg/colorsample"
	"wallpaper/pkg/device"
)

const usage = `usage: wallpaper <command> [flags]

commands:
  export    compose a wallpaper and export it as PNG
  analyze   report the average color of an image or hex color
  devices   list the preview devices
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code: 0 on
// success, 1 on failure, 2 on bad usage.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	var err error
	switch args[0] {
	case "export":
		err = runExport(ctx, args[1:], stdout, stderr)
	case "analyze":
		err = runAnalyze(ctx, args[1:], stdout, stderr)
	case "devices":
		err = runDevices(stdout)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintln(stderr, "unsupported command:", args[0])
		fmt.Fprint(stderr, usage)
		return 2
	}
	var uerr usageError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.As(err, &uerr):
		fmt.Fprintln(stderr, err)
		return 2
	default:
		fmt.Fprintln(stderr, err)
		return 1
	}
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func runAnalyze(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("in", "", "image path or http(s) URL")
	hex := fs.String("color", "", "hex color to analyze instead of an image")
	logLevel := fs.String("log-level", "warn", "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*input) == "" && strings.TrimSpace(*hex) == "" {
		return usageError{"analyze requires -in or -color"}
	}

	sampler := colorsample.New(colorsample.Options{Logger: logging.New(*logLevel)})
	defer sampler.Close()

	var res colorsample.Result
	if *hex != "" {
		res = sampler.AnalyzeHex(ctx, *hex)
	} else {
		res = sampler.Analyze(ctx, colorsample.Ref(*input))
		if fi, err := os.Stat(*input); err == nil {
			fmt.Fprintf(stdout, "file:\t%s (%s)\n", *input, capture.FormatFileSize(fi.Size()))
		}
	}
	fmt.Fprintf(stdout, "average:\t%s (alpha %.2f)\n", res.Hex, res.RGBA.A)
	fmt.Fprintf(stdout, "dark:\t%t\n", res.IsDark)
	fmt.Fprintf(stdout, "text color:\t%s\n", res.TextColor)
	return nil
}

func runDevices(stdout io.Writer) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tFRAME")
	for _, d := range device.Catalog() {
		frame := "no"
		if d.HasFrame {
			frame = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\n", d.ID, d.Name, d.Width, d.Height, frame)
	}
	return tw.Flush()
}
