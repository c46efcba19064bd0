package dom

import (
	"image"
	"strings"
	"testing"

	"wallpaper/pkg/layout"
)

func tree() (root, canvas, content, mark *Element) {
	root = New("div", "preview-area")
	canvas = New("div", "preview-canvas")
	content = New("div", "wallpaper-content")
	mark = New("span", "watermark")
	mark.ID = "wm"
	root.Append(canvas.Append(content.Append(mark)))
	return
}

func TestQuery(t *testing.T) {
	root, canvas, content, mark := tree()

	tests := []struct {
		sel  string
		want *Element
	}{
		{".preview-canvas", canvas},
		{".wallpaper-content", content},
		{"#wm", mark},
		{"span", mark},
		{".preview-area", nil},
		{".missing", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if got := root.Query(tt.sel); got != tt.want {
			t.Errorf("Query(%q) = %v, want %v", tt.sel, got, tt.want)
		}
	}
	if got := len(root.QueryAll("div")); got != 2 {
		t.Errorf("QueryAll(div) = %d, want 2", got)
	}
}

func TestAppendRemove(t *testing.T) {
	root, canvas, content, mark := tree()
	if mark.Root() != root {
		t.Error("Root() of a deep node should be the tree root")
	}
	if !canvas.Contains(mark) || mark.Contains(canvas) {
		t.Error("Contains() wrong")
	}

	root.Append(mark)
	if mark.Parent() != root || len(content.Children()) != 0 {
		t.Error("Append should move an attached element")
	}

	mark.Remove()
	mark.Remove()
	if mark.Parent() != nil || len(root.Children()) != 1 {
		t.Errorf("Remove left %d children", len(root.Children()))
	}
}

func TestDocumentListeners(t *testing.T) {
	doc := NewDocument()
	var order []int
	remove1 := doc.Listen(PointerMove, func(PointerEvent) { order = append(order, 1) })
	doc.Listen(PointerMove, func(PointerEvent) { order = append(order, 2) })
	var removeSelf func()
	removeSelf = doc.Listen(PointerUp, func(PointerEvent) { removeSelf() })

	doc.Dispatch(PointerEvent{Kind: PointerMove})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("dispatch order = %v", order)
	}

	remove1()
	remove1()
	if n := doc.Listeners(PointerMove); n != 1 {
		t.Errorf("Listeners(move) = %d, want 1", n)
	}

	doc.Dispatch(PointerEvent{Kind: PointerUp})
	if n := doc.Listeners(PointerUp); n != 0 {
		t.Errorf("self-removing listener left %d listeners", n)
	}
}

func TestHTML(t *testing.T) {
	root, _, content, mark := tree()
	root.Size = layout.Size{W: 300, H: 600}
	root.Background = "#f5f5f5"
	content.Image = image.NewNRGBA(image.Rect(0, 0, 2, 2))
	content.Fit = layout.Contain
	d := layout.ComputePosition(layout.Placement{Position: layout.Center, Rotation: 10}, layout.DeviceContext{ID: "xiaohongshu"})
	mark.Position = &d
	mark.Text = &Text{Content: "<b>hi</b>", FontFamily: "Arial", FontSize: 24, Color: "#ffffff"}
	mark.Opacity = 0.5

	guide := New("div", "guide-line")
	guide.Size = layout.Size{W: 300}
	guide.Border = &Border{Width: 1, Color: "#f4d03f", Dashed: true}
	root.Append(guide)

	out, err := HTML(root)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	for _, want := range []string{
		`class="preview-area"`,
		`position: relative`,
		`width: 300px; height: 600px`,
		`background-image: url(data:image/png;base64,`,
		`background-size: contain`,
		`transform: translate(-50%, -50%) rotate(10deg)`,
		`opacity: 0.5`,
		`&lt;b&gt;hi&lt;/b&gt;`,
		`border-top: 1px dashed #f4d03f`,
		NodeSelector(mark)[1 : len(NodeSelector(mark))-1],
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML() missing %q", want)
		}
	}
	if strings.Contains(out, "<b>hi") {
		t.Error("text content not escaped")
	}
}
