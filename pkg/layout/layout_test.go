package layout

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/ged2dot/pkg/config"
	"github.com/matzehuels/ged2dot/pkg/dot"
	gerrors "github.com/matzehuels/ged2dot/pkg/errors"
	"github.com/matzehuels/ged2dot/pkg/gedcom"
)

func fixedNow() time.Time {
	return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func loadFixture(t *testing.T, name string) *gedcom.Model {
	t.Helper()
	m, err := gedcom.Load(filepath.Join("testdata", name), gedcom.ImportOptions{
		Now:             fixedNow,
		ConsiderAgeDead: config.DefaultConsiderAgeDead,
	})
	if err != nil {
		t.Fatalf("Load(%s) error: %v", name, err)
	}
	return m
}

// calc loads a fixture, runs the configured strategy and returns it.
func calc(t *testing.T, fixture string, modify func(*config.Config)) Strategy {
	t.Helper()
	cfg := config.Default()
	if modify != nil {
		modify(cfg)
	}
	s, err := New(loadFixture(t, fixture), cfg, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := s.Calc(context.Background()); err != nil {
		t.Fatalf("Calc() error: %v", err)
	}
	return s
}

func render(t *testing.T, s Strategy) string {
	t.Helper()
	var buf bytes.Buffer
	if err := s.Render(&buf); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	return buf.String()
}

func graphOf(s Strategy) *dot.Graph {
	switch v := s.(type) {
	case *ancestors:
		return v.Graph()
	case *descendants:
		return v.Graph()
	}
	return nil
}

func row(t *testing.T, s Strategy, name string) *dot.Subgraph {
	t.Helper()
	sg := graphOf(s).Subgraph(name)
	if sg == nil {
		t.Fatalf("row %s not found", name)
	}
	return sg
}

func hasEdge(sg *dot.Subgraph, from, to string, invisible bool) bool {
	for _, e := range sg.Edges() {
		if e.From == from && e.To == to && e.Invisible == invisible {
			return true
		}
	}
	return false
}

func anyRowHasNode(s Strategy, id string) bool {
	for _, sg := range graphOf(s).Subgraphs {
		if sg.HasNode(id) {
			return true
		}
	}
	return false
}

func TestGolden(t *testing.T) {
	rootF3 := func(c *config.Config) { c.RootFamily = "F3" }

	tests := []struct {
		fixture string
		golden  string
		modify  func(*config.Config)
	}{
		{"hello.ged", "hello.dot", nil},
		{"bom.ged", "hello.dot", nil},
		{"nohusb.ged", "nohusb.dot", rootF3},
		{"nowife.ged", "nowife.dot", rootF3},
		{"husb-cousin.ged", "husb-cousin.dot", nil},
		{"siblings.ged", "siblings.dot", nil},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			want, err := os.ReadFile(filepath.Join("testdata", tt.golden))
			if err != nil {
				t.Fatal(err)
			}
			got := render(t, calc(t, tt.fixture, tt.modify))
			if got != string(want) {
				t.Errorf("output differs from %s\ngot:\n%s\nwant:\n%s", tt.golden, got, want)
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	fixtures := []string{"hello.ged", "siblings.ged", "husb-cousin.ged", "nohusb.ged"}
	for _, fixture := range fixtures {
		t.Run(fixture, func(t *testing.T) {
			modify := func(c *config.Config) {
				if fixture == "nohusb.ged" {
					c.RootFamily = "F3"
				}
			}
			first := render(t, calc(t, fixture, modify))
			second := render(t, calc(t, fixture, modify))
			if first != second {
				t.Error("two runs on the same input produced different output")
			}
		})
	}
}

func TestCalcTwice(t *testing.T) {
	s := calc(t, "hello.ged", nil)
	if err := s.Calc(context.Background()); !errors.Is(err, ErrAlreadyCalculated) {
		t.Errorf("second Calc() = %v, want %v", err, ErrAlreadyCalculated)
	}
}

func TestNoSuchFamily(t *testing.T) {
	for _, layout := range []string{"ancestors", "descendants"} {
		t.Run(layout, func(t *testing.T) {
			cfg := config.Default()
			cfg.RootFamily = "F99"
			cfg.Layout = layout
			s, err := New(loadFixture(t, "hello.ged"), cfg, nil)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			err = s.Calc(context.Background())
			if !gerrors.Is(err, gerrors.ErrCodeNoSuchFamily) {
				t.Errorf("Calc() = %v, want %v", err, gerrors.ErrCodeNoSuchFamily)
			}
		})
	}
}

func TestCalcCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, layout := range []string{"ancestors", "descendants"} {
		t.Run(layout, func(t *testing.T) {
			cfg := config.Default()
			cfg.Layout = layout
			s, err := New(loadFixture(t, "siblings.ged"), cfg, nil)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if err := s.Calc(ctx); !errors.Is(err, context.Canceled) {
				t.Errorf("Calc() = %v, want %v", err, context.Canceled)
			}
		})
	}
}

func TestNewUnknownLayout(t *testing.T) {
	cfg := config.Default()
	cfg.Layout = "sideways"
	if _, err := New(gedcom.NewModel(), cfg, nil); !gerrors.Is(err, gerrors.ErrCodeInvalidConfig) {
		t.Errorf("New() = %v, want %v", err, gerrors.ErrCodeInvalidConfig)
	}
}

func TestDepthBound(t *testing.T) {
	for _, depth := range []int{0, 1, 3} {
		s := calc(t, "siblings.ged", func(c *config.Config) { c.LayoutMaxDepth = depth })

		var names []string
		for _, sg := range graphOf(s).Subgraphs {
			names = append(names, sg.Name)
		}
		// One real and one connector row per generation, from depth down to -1.
		if len(names) != 2*(depth+2) {
			t.Errorf("depth %d: rows = %v", depth, names)
		}
		if names[0] != dot.DepthName(depth) || names[len(names)-1] != dot.ConnectsName(-1) {
			t.Errorf("depth %d: first/last rows = %s/%s", depth, names[0], names[len(names)-1])
		}
		if got := s.Summary().Rows; got != len(names) {
			t.Errorf("Summary().Rows = %d, want %d", got, len(names))
		}
	}
}

func TestMissingSpouse(t *testing.T) {
	tests := []struct {
		fixture  string
		marriage string
		ph       string
		color    string
	}{
		{"nohusb.ged", "PH0AndP2", "PH0", "blue"},
		{"nowife.ged", "P2AndPH0", "PH0", "pink"},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			s := calc(t, tt.fixture, func(c *config.Config) { c.RootFamily = "F3" })
			r := row(t, s, "Depth0")
			if !r.HasNode(tt.marriage) {
				t.Errorf("marriage %s not placed", tt.marriage)
			}
			var ph *dot.Node
			for _, n := range r.Nodes() {
				if n.ID == tt.ph {
					ph = n
				}
			}
			if ph == nil {
				t.Fatalf("placeholder %s not placed", tt.ph)
			}
			if !strings.Contains(ph.Attrs, "color = "+tt.color) {
				t.Errorf("placeholder attrs = %q, want color %s", ph.Attrs, tt.color)
			}
			if !hasEdge(row(t, s, "Depth0Connects"), tt.marriage, "P1Connect", false) {
				t.Error("marriage not connected to the child connector")
			}
		})
	}
}

func TestSiblingFamilies(t *testing.T) {
	s := calc(t, "siblings.ged", nil)
	depth0 := row(t, s, "Depth0")

	for _, id := range []string{"P7", "P6AndP7", "P13", "P13AndP12"} {
		if !depth0.HasNode(id) {
			t.Errorf("Depth0 misses %s", id)
		}
	}

	// Ordering edges moved to the inserted spouses.
	if !hasEdge(depth0, "P7", "P1", true) || hasEdge(depth0, "P6", "P1", true) {
		t.Error("ordering edge leaving Fred was not moved to his wife")
	}
	if !hasEdge(depth0, "P2", "P13", true) || hasEdge(depth0, "P2", "P12", true) {
		t.Error("ordering edge reaching Kate was not moved to her husband")
	}

	// The new spouse stands right after the marriage point, before the sibling.
	_, marriagePos, _ := depth0.IndexOfNode("P13AndP12")
	_, husbPos, _ := depth0.IndexOfNode("P13")
	_, wifePos, _ := depth0.IndexOfNode("P12")
	if !(marriagePos < husbPos && husbPos < wifePos) {
		t.Errorf("positions marriage/husband/wife = %d/%d/%d", marriagePos, husbPos, wifePos)
	}

	// Kate's daughter is chained after Beth's last child.
	if !row(t, s, "Depth-1").HasNode("P14") {
		t.Error("sibling child P14 not placed")
	}
	if !hasEdge(row(t, s, "Depth-1"), "P3", "P14", true) {
		t.Error("sibling child not ordered after the anchor child")
	}
	connects := row(t, s, "Depth0Connects")
	if !connects.HasNode("P14Connect") || !connects.HasNode("P13AndP12Connect") {
		t.Error("sibling child connectors not placed")
	}

	// Fred is the leftmost child, so his children have no anchor.
	for _, id := range []string{"P8", "P9"} {
		if anyRowHasNode(s, id) {
			t.Errorf("%s placed without an anchor", id)
		}
	}

	if got := s.Summary().SiblingFamilies; got != 2 {
		t.Errorf("Summary().SiblingFamilies = %d, want 2", got)
	}
}

func TestSiblingDepth(t *testing.T) {
	tests := []struct {
		name         string
		siblingDepth int
		want         bool
	}{
		{"follows max depth", config.SameAsMaxDepth, true},
		{"hidden", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := calc(t, "siblings.ged", func(c *config.Config) {
				c.LayoutMaxDepth = 1
				c.LayoutMaxSiblingDepth = tt.siblingDepth
			})
			for _, id := range []string{"P7", "P13", "P14"} {
				if got := anyRowHasNode(s, id); got != tt.want {
					t.Errorf("%s placed = %v, want %v", id, got, tt.want)
				}
			}
		})
	}
}

func TestSiblingFamilyDepth(t *testing.T) {
	s := calc(t, "siblings.ged", func(c *config.Config) { c.LayoutMaxSiblingFamilyDepth = 0 })
	if !anyRowHasNode(s, "P14") {
		t.Error("sibling children at depth 0 should still be shown")
	}
	if !anyRowHasNode(s, "P13") {
		t.Error("sibling spouse missing")
	}
}

func TestChildOrdering(t *testing.T) {
	m := loadFixture(t, "siblings.ged")
	s, err := New(m, config.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Calc(context.Background()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		family string
		want   []string
	}{
		// Adam married into the lineage and moves right.
		{"F2", []string{"P6", "P1"}},
		// Beth married into the lineage and moves left.
		{"F4", []string{"P2", "P12"}},
	}
	for _, tt := range tests {
		if got := m.Family(tt.family).Children; !slices.Equal(got, tt.want) {
			t.Errorf("%s children = %v, want %v", tt.family, got, tt.want)
		}
	}

	a := s.(*ancestors)
	for _, f := range m.Families() {
		before := slices.Clone(f.Children)
		a.sortChildren(f)
		if !slices.Equal(before, f.Children) {
			t.Errorf("sorting %s again changed %v to %v", f.ID, before, f.Children)
		}
	}
}

func TestPedigreeCollapse(t *testing.T) {
	s := calc(t, "husb-cousin.ged", nil)

	count := 0
	for _, n := range row(t, s, "Depth2").Nodes() {
		if n.ID == "P8AndP9" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("shared grandparents placed %d times, want 1", count)
	}
	if got := s.Summary().Families; got != 4 {
		t.Errorf("Summary().Families = %d, want 4", got)
	}
	if got := s.Summary().SiblingFamilies; got != 0 {
		t.Errorf("Summary().SiblingFamilies = %d, want 0", got)
	}
}

func TestDescendants(t *testing.T) {
	s := calc(t, "siblings.ged", func(c *config.Config) {
		c.RootFamily = "F4"
		c.Layout = "descendants"
	})
	if s.Name() != "descendants" {
		t.Errorf("Name() = %q", s.Name())
	}

	depth1 := row(t, s, "Depth1")
	for _, id := range []string{"P12", "P13", "P2", "P1", "P13AndP12", "P1AndP2"} {
		if !depth1.HasNode(id) {
			t.Errorf("Depth1 misses %s", id)
		}
	}
	// Beth is ordered through her husband Adam.
	if !hasEdge(depth1, "P12", "P1", true) || hasEdge(depth1, "P12", "P2", true) {
		t.Error("married daughter not ordered through her husband")
	}

	names := []string{}
	for _, sg := range graphOf(s).Subgraphs {
		names = append(names, sg.Name)
	}
	if names[0] != "Depth0" || names[len(names)-1] != dot.ConnectsName(config.DefaultMaxDepth) {
		t.Errorf("rows = %v", names)
	}
	if got := s.Summary().Families; got != 3 {
		t.Errorf("Summary().Families = %d, want 3", got)
	}
}

func TestSiblingSpouseMissingFromRow(t *testing.T) {
	s := calc(t, "siblings.ged", nil)
	a := s.(*ancestors)

	stray := &gedcom.Family{ID: "F99", Husb: &gedcom.Individual{ID: "X1"}, Wife: &gedcom.Individual{ID: "X2"}}
	err := a.addSiblingSpouses(siblingFamily{family: stray, depth: 0})
	if !errors.Is(err, gerrors.ErrInvariant) {
		t.Errorf("addSiblingSpouses() = %v, want %v", err, gerrors.ErrInvariant)
	}
}
