package render

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	gerrors "github.com/matzehuels/ged2dot/pkg/errors"
)

func TestRenderSVG(t *testing.T) {
	dot, err := os.ReadFile("../layout/testdata/hello.dot")
	if err != nil {
		t.Fatal(err)
	}

	svg, err := Render(context.Background(), dot, FormatSVG)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Fatalf("output is not SVG: %.200s", svg)
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Error("viewBox not normalized")
	}
}

func TestRenderPNG(t *testing.T) {
	png, err := Render(context.Background(), []byte("digraph {\na -> b\n}\n"), FormatPNG)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("output does not start with the PNG signature: %q", png[:min(8, len(png))])
	}
}

func TestRenderDOTPassthrough(t *testing.T) {
	in := []byte("digraph {\n}\n")
	out, err := Render(context.Background(), in, FormatDOT)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(in, out) {
		t.Errorf("Render(dot) = %q, want input unchanged", out)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(context.Background(), []byte("digraph {}"), "pdf")
	if !gerrors.Is(err, gerrors.ErrCodeInvalidFormat) {
		t.Errorf("Render(pdf) error = %v, want INVALID_FORMAT", err)
	}
}

func TestRenderInvalidDOT(t *testing.T) {
	_, err := Render(context.Background(), []byte("this is not dot {"), FormatSVG)
	if err == nil {
		t.Error("Render of malformed DOT should fail")
	}
}

func TestFormats(t *testing.T) {
	for _, f := range Formats {
		if !ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = false", f)
		}
		if ContentType(f) == "" {
			t.Errorf("ContentType(%q) is empty", f)
		}
	}
	if ValidFormat("gif") {
		t.Error("ValidFormat(gif) = true")
	}
	if got := ContentType(FormatSVG); got != "image/svg+xml" {
		t.Errorf("ContentType(svg) = %q", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "rewrites root",
			in:   `<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`,
			want: `viewBox="0 0 100.00 50.00" width="100" height="50"><g/>`,
		},
		{
			name: "no viewBox",
			in:   `<svg><g/></svg>`,
			want: `<svg><g/></svg>`,
		},
		{
			name: "zero size",
			in:   `<svg viewBox="0 0 0 0"></svg>`,
			want: `<svg viewBox="0 0 0 0"></svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(normalizeViewBox([]byte(tt.in)))
			if !strings.Contains(got, tt.want) {
				t.Errorf("normalizeViewBox = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
