// Package render turns DOT text into images using an embedded Graphviz.
//
// Rendering runs in-process through [github.com/goccy/go-graphviz], so no
// `dot` binary is needed:
//
//	svg, err := render.Render(ctx, dotText, render.FormatSVG)
//
// The DOT text produced by the layout package uses orthogonal splines,
// which Graphviz lays out slowly on large trees; callers should bound the
// render with a context deadline.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	gerrors "github.com/matzehuels/ged2dot/pkg/errors"
)

// Output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatJPG = "jpg"
)

// Formats lists the formats accepted by [Render], plus DOT passthrough.
var Formats = []string{FormatDOT, FormatSVG, FormatPNG, FormatJPG}

// ValidFormat reports whether format is one of [Formats].
func ValidFormat(format string) bool {
	return slices.Contains(Formats, format)
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJPG:
		return "image/jpeg"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// Render lays out dot with Graphviz and returns the image bytes.
// FormatDOT returns the input unchanged.
func Render(ctx context.Context, dot []byte, format string) ([]byte, error) {
	var gvFormat graphviz.Format
	switch strings.ToLower(format) {
	case FormatDOT:
		return dot, nil
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	case FormatJPG:
		gvFormat = graphviz.JPG
	default:
		return nil, gerrors.New(gerrors.ErrCodeInvalidFormat, "unsupported output format %q (want one of %s)",
			format, strings.Join(Formats, ", "))
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	if gvFormat == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the pt-sized root element Graphviz emits with a
// unitless one so the tree scales when embedded in a page.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
