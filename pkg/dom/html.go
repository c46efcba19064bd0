package dom

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// NodeSelector returns the CSS selector addressing e in HTML output.
func NodeSelector(e *Element) string {
	return fmt.Sprintf(`[data-node="%d"]`, e.node)
}

// HTML renders the tree rooted at root as a standalone document with inline
// styles. Images are embedded as PNG data URIs.
func HTML(root *Element) (string, error) {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><style>`)
	b.WriteString(`html,body{margin:0;padding:0;background:transparent}*{box-sizing:border-box}`)
	b.WriteString(`</style></head><body>`)
	if err := writeElement(&b, root, true); err != nil {
		return "", err
	}
	b.WriteString(`</body></html>`)
	return b.String(), nil
}

func writeElement(b *strings.Builder, e *Element, root bool) error {
	tag := e.Tag
	if tag == "" {
		tag = "div"
	}
	fmt.Fprintf(b, `<%s data-node="%d"`, tag, e.node)
	if e.ID != "" {
		fmt.Fprintf(b, ` id="%s"`, html.EscapeString(e.ID))
	}
	if len(e.Classes) > 0 {
		fmt.Fprintf(b, ` class="%s"`, html.EscapeString(strings.Join(e.Classes, " ")))
	}
	style, err := inlineStyle(e, root)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, ` style="%s">`, html.EscapeString(style))
	if e.Text != nil {
		b.WriteString(html.EscapeString(e.Text.Content))
	}
	for _, c := range e.children {
		if err := writeElement(b, c, false); err != nil {
			return err
		}
	}
	fmt.Fprintf(b, `</%s>`, tag)
	return nil
}

func inlineStyle(e *Element, root bool) (string, error) {
	var decls []string
	add := func(name, value string) { decls = append(decls, name+": "+value) }

	if root {
		add("position", "relative")
	} else {
		add("position", "absolute")
		if e.Position == nil {
			add("top", "0")
			add("left", "0")
		}
	}
	if e.Position != nil {
		if s := e.Position.Style(); s != "" {
			decls = append(decls, strings.TrimSuffix(s, ";"))
		}
	}
	if e.Size.W > 0 {
		add("width", px(e.Size.W))
	}
	if e.Size.H > 0 {
		add("height", px(e.Size.H))
	}
	if e.Background != "" {
		add("background-color", e.Background)
	}
	if e.Image != nil {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, e.Image, imaging.PNG); err != nil {
			return "", fmt.Errorf("encode element image: %w", err)
		}
		add("background-image", "url(data:image/png;base64,"+base64.StdEncoding.EncodeToString(buf.Bytes())+")")
		fit := string(e.Fit)
		if fit == "" {
			fit = "cover"
		}
		add("background-size", fit)
		add("background-position", "center")
		add("background-repeat", "no-repeat")
	}
	if bd := e.Border; bd != nil && bd.Width > 0 {
		style := "solid"
		if bd.Dashed {
			style = "dashed"
		}
		v := fmt.Sprintf("%s %s %s", px(bd.Width), style, bd.Color)
		switch {
		case e.Size.H == 0:
			add("border-top", v)
		case e.Size.W == 0:
			add("border-left", v)
		default:
			add("border", v)
		}
		if bd.Radius > 0 {
			add("border-radius", px(bd.Radius))
		}
	}
	if e.Opacity < 1 {
		add("opacity", strconv.FormatFloat(e.Opacity, 'f', -1, 64))
	}
	if t := e.Text; t != nil {
		add("font-family", fmt.Sprintf("'%s', sans-serif", strings.ReplaceAll(t.FontFamily, "'", "")))
		add("font-size", px(t.FontSize))
		add("color", t.Color)
		add("white-space", "nowrap")
		add("line-height", "1")
		if t.Vertical && (e.Position == nil || e.Position.WritingMode == "") {
			add("writing-mode", "vertical-rl")
		}
	}
	return strings.Join(decls, "; "), nil
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
