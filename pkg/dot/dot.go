// Package dot builds the textual Graphviz description of a family-tree layout.
//
// The layout engine works on an ordered list of [Subgraph] values, one per
// generation row. Each subgraph holds nodes and edges in emission order;
// the order is what Graphviz uses to arrange same-rank nodes left to right,
// so element positions matter and are manipulated directly (prepend,
// append, insert at position).
//
// A subgraph is closed by calling [Subgraph.End]. Elements appended after
// that are written outside the rank=same block, which is how edges between
// rows are emitted next to the row they belong to.
//
// Identifiers are kept raw while the layout runs and are escaped with
// [gedcom.Escape] only when written out, so lookups always compare the
// identifiers found in the input.
package dot

import (
	"bufio"
	"fmt"
	"io"
	"slices"

	"github.com/matzehuels/ged2dot/pkg/gedcom"
)

// Element is a node, an edge or the end marker of a subgraph.
type Element interface {
	write(w *bufio.Writer)
}

// Node is a graph node. Attrs is written verbatim after the identifier.
type Node struct {
	ID      string
	Attrs   string
	Comment string
}

// Point returns an invisible zero-width connector node.
func Point(id, comment string) *Node {
	return &Node{ID: id, Attrs: "[ shape = point, width = 0 ]", Comment: comment}
}

// VisiblePoint returns a small dot, used for marriages.
func VisiblePoint(id, comment string) *Node {
	return &Node{ID: id, Attrs: "[ shape = point ]", Comment: comment}
}

// Box returns a person node.
func Box(id, label, color string) *Node {
	return &Node{ID: id, Attrs: fmt.Sprintf("[ shape = box,\nlabel = %s,\ncolor = %s ]", label, color)}
}

func (n *Node) write(w *bufio.Writer) {
	attrs := n.Attrs
	if n.Comment != "" {
		attrs += " // " + n.Comment
	}
	fmt.Fprintf(w, "%s %s\n", gedcom.Escape(n.ID), attrs)
}

// Edge is a directed edge. From and To may be rewritten after creation.
type Edge struct {
	From      string
	To        string
	Invisible bool
	attrs     string
}

func (e *Edge) write(w *bufio.Writer) {
	fmt.Fprintf(w, "%s -> %s %s\n", gedcom.Escape(e.From), gedcom.Escape(e.To), e.attrs)
}

// EdgeStyle decides how visible and invisible edges are drawn.
type EdgeStyle struct {
	// InvisibleRed draws ordering edges in red instead of hiding them.
	InvisibleRed bool
	// VisibleDirected keeps arrowheads on relationship edges.
	VisibleDirected bool
}

// Edge returns a visible relationship edge with an optional comment.
func (s EdgeStyle) Edge(from, to, comment string) *Edge {
	attrs := ""
	if !s.VisibleDirected {
		attrs = "[ arrowhead = none ]"
	}
	return &Edge{From: from, To: to, attrs: withComment(attrs, comment)}
}

// Invisible returns an ordering-only edge.
func (s EdgeStyle) Invisible(from, to string) *Edge {
	attrs := "[ style = invis ]"
	if s.InvisibleRed {
		attrs = "[ color = red ]"
	}
	return &Edge{From: from, To: to, Invisible: true, attrs: attrs}
}

func withComment(attrs, comment string) string {
	if comment == "" {
		return attrs
	}
	return attrs + "// " + comment
}

type end struct{}

func (end) write(w *bufio.Writer) { w.WriteString("}\n") }

// Subgraph is one rank=same row.
type Subgraph struct {
	Name     string
	Elements []Element
}

// NewSubgraph returns an empty, open subgraph.
func NewSubgraph(name string) *Subgraph {
	return &Subgraph{Name: name}
}

// Append adds e at the end.
func (s *Subgraph) Append(e Element) { s.Elements = append(s.Elements, e) }

// Prepend adds e at the front.
func (s *Subgraph) Prepend(e Element) { s.Elements = slices.Insert(s.Elements, 0, e) }

// Insert adds e at pos, shifting later elements right.
func (s *Subgraph) Insert(pos int, e Element) { s.Elements = slices.Insert(s.Elements, pos, e) }

// End closes the rank=same block.
func (s *Subgraph) End() { s.Append(end{}) }

// IndexOfNode returns the identifier and position of the first node whose
// identifier is one of ids.
func (s *Subgraph) IndexOfNode(ids ...string) (string, int, bool) {
	for pos, e := range s.Elements {
		n, ok := e.(*Node)
		if !ok {
			continue
		}
		if slices.Contains(ids, n.ID) {
			return n.ID, pos, true
		}
	}
	return "", -1, false
}

// HasNode reports whether a node with the given identifier is present.
func (s *Subgraph) HasNode(id string) bool {
	_, _, ok := s.IndexOfNode(id)
	return ok
}

// PrevOf returns the source of the first edge pointing at id: the element
// the given node follows in this row.
func (s *Subgraph) PrevOf(id string) (string, bool) {
	for _, e := range s.Elements {
		if edge, ok := e.(*Edge); ok && edge.To == id {
			return edge.From, true
		}
	}
	return "", false
}

// Edges returns the edges of the subgraph in order.
func (s *Subgraph) Edges() []*Edge {
	var out []*Edge
	for _, e := range s.Elements {
		if edge, ok := e.(*Edge); ok {
			out = append(out, edge)
		}
	}
	return out
}

// Nodes returns the nodes of the subgraph in order.
func (s *Subgraph) Nodes() []*Node {
	var out []*Node
	for _, e := range s.Elements {
		if n, ok := e.(*Node); ok {
			out = append(out, n)
		}
	}
	return out
}

func (s *Subgraph) write(w *bufio.Writer) {
	fmt.Fprintf(w, "subgraph %s {\n", gedcom.Escape(s.Name))
	w.WriteString("rank = same\n")
	for _, e := range s.Elements {
		e.write(w)
	}
	w.WriteString("\n")
}

// Graph is the whole digraph: subgraphs in emission order.
type Graph struct {
	Subgraphs []*Subgraph
}

// Add appends s to the graph.
func (g *Graph) Add(s *Subgraph) { g.Subgraphs = append(g.Subgraphs, s) }

// Subgraph returns the subgraph with the given raw name, or nil.
func (g *Graph) Subgraph(name string) *Subgraph {
	for _, s := range g.Subgraphs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Render writes the digraph to w.
func (g *Graph) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("digraph {\n")
	bw.WriteString("splines = ortho\n")
	for _, s := range g.Subgraphs {
		s.write(bw)
	}
	bw.WriteString("}\n")
	return bw.Flush()
}

// MarriageName is the identifier of the point node joining two spouses.
func MarriageName(husbID, wifeID string) string {
	return husbID + "And" + wifeID
}

// ConnectName is the identifier of the connector node above x.
func ConnectName(x string) string {
	return x + "Connect"
}

// DepthName is the raw name of a real row.
func DepthName(depth int) string {
	return fmt.Sprintf("Depth%d", depth)
}

// ConnectsName is the raw name of a connector row.
func ConnectsName(depth int) string {
	return fmt.Sprintf("Depth%dConnects", depth)
}
