package device

import "testing"

func TestByID(t *testing.T) {
	tests := []struct {
		id     string
		wantOK bool
		want   string
	}{
		{id: "iphone", wantOK: true, want: "iPhone"},
		{id: "mac", wantOK: true, want: "Mac"},
		{id: CustomID, wantOK: true, want: "Custom"},
		{id: "nokia", wantOK: false},
		{id: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			d, ok := ByID(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("ByID(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if ok && d.Name != tt.want {
				t.Errorf("ByID(%q).Name = %q, want %q", tt.id, d.Name, tt.want)
			}
			if !ok && d != (Device{}) {
				t.Errorf("ByID(%q) = %+v, want zero value", tt.id, d)
			}
		})
	}
}

func TestByIDOrDefault(t *testing.T) {
	if got := ByIDOrDefault("missing"); got.ID != Catalog()[DefaultIndex].ID {
		t.Errorf("ByIDOrDefault(missing) = %q, want default %q", got.ID, Catalog()[DefaultIndex].ID)
	}
	if got := ByIDOrDefault("ipad"); got.ID != "ipad" {
		t.Errorf("ByIDOrDefault(ipad) = %q", got.ID)
	}
}

func TestCatalogIsCopy(t *testing.T) {
	a := Catalog()
	a[0].Selected = true
	a[0].Name = "changed"
	b := Catalog()
	if b[0].Selected || b[0].Name == "changed" {
		t.Error("Catalog() returned shared backing storage")
	}
}

func TestCatalogInvariants(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range Catalog() {
		if seen[d.ID] {
			t.Errorf("duplicate id %q", d.ID)
		}
		seen[d.ID] = true
		if d.Width <= 0 || d.Height <= 0 {
			t.Errorf("%s: non-positive size %dx%d", d.ID, d.Width, d.Height)
		}
		if d.Custom() && d.HasFrame {
			t.Errorf("custom device must not carry a frame")
		}
	}
	if !seen[CustomID] {
		t.Error("catalog is missing the custom device")
	}
}
