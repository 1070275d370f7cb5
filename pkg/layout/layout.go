// Package layout arranges a family tree into Graphviz rows.
//
// A layout never computes coordinates. It decides which generation row each
// person occupies and the left-to-right order inside the row, and expresses
// parent, child and marriage relations as nodes and edges of a [dot.Graph].
// Graphviz does the rest.
//
// Every generation gets two rank=same subgraphs:
//
//	Depth<d>          husbands, wives, marriage points and the children
//	                  placed by the generation above
//	Depth<d>Connects  zero-width connector points that fan out from a
//	                  marriage to each child
//
// Two strategies exist. The ancestor strategy walks upward from a root
// family through each spouse's parents and can attach the spouses and
// children of siblings beside the main lineage. The descendant strategy
// walks downward through each child's own family.
//
// A layout is single-use: [Strategy.Calc] mutates its graph and the model
// (placeholder spouses, child order) and may run once.
package layout

import (
	"context"
	"errors"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ged2dot/pkg/config"
	"github.com/matzehuels/ged2dot/pkg/dot"
	gerrors "github.com/matzehuels/ged2dot/pkg/errors"
	"github.com/matzehuels/ged2dot/pkg/gedcom"
)

// ErrAlreadyCalculated is returned by a second Calc on the same layout.
var ErrAlreadyCalculated = errors.New("layout already calculated")

// Strategy is one way of arranging the model into rows.
type Strategy interface {
	Name() string
	// Calc selects the families and builds the rows. It stops with the
	// context's error when ctx is done.
	Calc(ctx context.Context) error
	Render(w io.Writer) error
	Summary() Summary
}

// Summary describes a calculated layout.
type Summary struct {
	Families        int // families placed in the main lineage
	SiblingFamilies int // families attached beside it
	Rows            int
	Nodes           int
	Edges           int
}

// Option configures a layout.
type Option func(*Layout)

// WithLogger sets the logger used for skipped insertions and progress.
func WithLogger(l *log.Logger) Option {
	return func(lay *Layout) {
		if l != nil {
			lay.logger = l
		}
	}
}

// New returns the strategy selected by cfg.Layout. A nil labeler uses
// NewLabeler with the model's directory.
func New(m *gedcom.Model, cfg *config.Config, labeler Labeler, opts ...Option) (Strategy, error) {
	variant, err := cfg.Variant()
	if err != nil {
		return nil, err
	}
	if labeler == nil {
		labeler = NewLabeler(cfg, m.Dir)
	}

	l := &Layout{
		model:  m,
		cfg:    cfg,
		label:  labeler,
		style:  dot.EdgeStyle{InvisibleRed: cfg.EdgeInvisibleRed, VisibleDirected: cfg.EdgeVisibleDirected},
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		depth:  make(map[*gedcom.Family]int),
	}
	for _, opt := range opts {
		opt(l)
	}

	switch variant {
	case config.VariantDescendants:
		return &descendants{Layout: l}, nil
	default:
		return &ancestors{Layout: l}, nil
	}
}

// Layout is the state shared by both strategies for one run.
type Layout struct {
	model  *gedcom.Model
	cfg    *config.Config
	label  Labeler
	style  dot.EdgeStyle
	logger *log.Logger

	graph    dot.Graph
	filtered []*gedcom.Family
	depth    map[*gedcom.Family]int
	siblings []siblingFamily

	calculated bool
}

// siblingFamily is the own family of a sibling of someone in the lineage,
// shown in row depth next to that sibling.
type siblingFamily struct {
	family *gedcom.Family
	depth  int
}

// Graph returns the graph built by Calc.
func (l *Layout) Graph() *dot.Graph { return &l.graph }

// Render writes the calculated graph.
func (l *Layout) Render(w io.Writer) error {
	return l.graph.Render(w)
}

// Summary counts what Calc produced.
func (l *Layout) Summary() Summary {
	s := Summary{
		Families:        len(l.filtered),
		SiblingFamilies: len(l.siblings),
		Rows:            len(l.graph.Subgraphs),
	}
	for _, sg := range l.graph.Subgraphs {
		s.Nodes += len(sg.Nodes())
		s.Edges += len(sg.Edges())
	}
	return s
}

func (l *Layout) begin() error {
	if l.calculated {
		return ErrAlreadyCalculated
	}
	l.calculated = true
	return nil
}

func (l *Layout) root() (*gedcom.Family, error) {
	root := l.model.Family(l.cfg.RootFamily)
	if root == nil {
		return nil, gerrors.New(gerrors.ErrCodeNoSuchFamily, "can't find family %q in the input file", l.cfg.RootFamily)
	}
	return root, nil
}

// include adds f to the lineage at depth. A family reached twice keeps its
// first depth and is reported as not added.
func (l *Layout) include(f *gedcom.Family, depth int) bool {
	if _, ok := l.depth[f]; ok {
		return false
	}
	l.depth[f] = depth
	l.filtered = append(l.filtered, f)
	return true
}

func (l *Layout) included(f *gedcom.Family) bool {
	_, ok := l.depth[f]
	return ok
}

func (l *Layout) familiesAt(depth int) []*gedcom.Family {
	var out []*gedcom.Family
	for _, f := range l.filtered {
		if l.depth[f] == depth {
			out = append(out, f)
		}
	}
	return out
}

// children returns the known children of f in order. References to
// individuals missing from the model are dropped.
func (l *Layout) children(f *gedcom.Family) []*gedcom.Individual {
	out := make([]*gedcom.Individual, 0, len(f.Children))
	for _, id := range f.Children {
		if i := l.model.Individual(id); i != nil {
			out = append(out, i)
		} else {
			l.logger.Debug("skipping unknown child", "family", f.ID, "id", id)
		}
	}
	return out
}

func childIDs(children []*gedcom.Individual) []string {
	ids := make([]string, len(children))
	for n, c := range children {
		ids[n] = c.ID
	}
	return ids
}

func (l *Layout) fullName(id string) string {
	if i := l.model.Individual(id); i != nil {
		return i.FullName()
	}
	return ""
}

func (l *Layout) node(i *gedcom.Individual) *dot.Node {
	return dot.Box(i.ID, l.label(i), color(i.Sex))
}

func (l *Layout) marriage(f *gedcom.Family) (*dot.Node, string) {
	husb := l.model.Husband(f)
	wife := l.model.Wife(f)
	name := dot.MarriageName(husb.ID, wife.ID)
	return dot.VisiblePoint(name, husb.FullName()+", "+wife.FullName()), name
}

// buildRow emits the real row at depth. pending holds the child nodes and
// ordering edges produced by the row above; the children of this row's
// families are returned for the next one. With descendants set, a married
// daughter is ordered through her husband, who stands left of her.
func (l *Layout) buildRow(depth int, pending []dot.Element, descendants bool) []dot.Element {
	row := dot.NewSubgraph(dot.DepthName(depth))
	for _, e := range pending {
		row.Append(e)
	}

	var next, deps []dot.Element
	var prevWife *gedcom.Individual
	prevChild := ""
	for _, f := range l.familiesAt(depth) {
		husb := l.model.Husband(f)
		row.Append(l.node(husb))
		if prevWife != nil {
			row.Append(l.style.Invisible(prevWife.ID, husb.ID))
		}
		wife := l.model.Wife(f)
		row.Append(l.node(wife))
		prevWife = wife

		marriage, name := l.marriage(f)
		row.Append(marriage)
		row.Append(l.style.Edge(husb.ID, name, husb.FullName()))
		row.Append(l.style.Edge(name, wife.ID, wife.FullName()))

		for _, child := range l.children(f) {
			next = append(next, l.node(child))
			if prevChild != "" {
				to := child.ID
				if descendants && child.Sex == gedcom.SexFemale && child.Fams != nil && child.Fams.Husb != nil {
					to = child.Fams.Husb.ID
				}
				next = append(next, l.style.Invisible(prevChild, to))
			}
			prevChild = child.ID
			deps = append(deps, l.style.Edge(dot.ConnectName(child.ID), child.ID, child.FullName()))
		}
	}
	row.End()
	for _, e := range deps {
		row.Append(e)
	}
	l.graph.Add(row)
	return next
}

// buildConnectorRow emits the connector points between the row at depth
// and its children. An even number of children gets the marriage point as
// an extra middle element so the marriage edge can drop straight down.
func (l *Layout) buildConnectorRow(depth int) {
	row := dot.NewSubgraph(dot.ConnectsName(depth))

	var deps []dot.Element
	prevChild := ""
	for _, f := range l.familiesAt(depth) {
		_, marriage := l.marriage(f)
		children := childIDs(l.children(f))
		if n := len(children); n > 0 && n%2 == 0 {
			children = slices.Insert(children, n/2, marriage)
		}
		for _, c := range children {
			row.Append(dot.Point(dot.ConnectName(c), l.fullName(c)))
		}

		middle := len(children) / 2
		for n, c := range children {
			switch {
			case n < middle:
				row.Append(l.style.Edge(dot.ConnectName(c), dot.ConnectName(children[n+1]), l.fullName(c)))
			case n == middle:
				deps = append(deps, l.style.Edge(marriage, dot.ConnectName(c), l.fullName(c)))
			default:
				row.Append(l.style.Edge(dot.ConnectName(children[n-1]), dot.ConnectName(c), l.fullName(c)))
			}
			if prevChild != "" {
				row.Append(l.style.Invisible(dot.ConnectName(prevChild), dot.ConnectName(c)))
				prevChild = ""
			}
		}
		if len(children) > 0 {
			prevChild = children[len(children)-1]
		}
	}
	row.End()
	for _, e := range deps {
		row.Append(e)
	}
	l.graph.Add(row)
}
