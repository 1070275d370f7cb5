package layout

import (
	"context"
	"slices"

	"github.com/matzehuels/ged2dot/pkg/dot"
	gerrors "github.com/matzehuels/ged2dot/pkg/errors"
	"github.com/matzehuels/ged2dot/pkg/gedcom"
)

// ancestors shows the parents of a root family, generation by generation,
// plus the spouses and children of siblings near the root.
type ancestors struct {
	*Layout
}

func (a *ancestors) Name() string { return "ancestors" }

func (a *ancestors) Calc(ctx context.Context) error {
	if err := a.begin(); err != nil {
		return err
	}
	if err := a.filterFamilies(ctx); err != nil {
		return err
	}

	// Children of generation d are nodes of row d-1, so rows are built
	// from the oldest generation down.
	var pending []dot.Element
	for depth := a.cfg.LayoutMaxDepth; depth >= -1; depth-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		pending = a.buildRow(depth, pending, false)
		a.buildConnectorRow(depth)
	}

	for _, sf := range a.siblings {
		if a.included(sf.family) {
			a.logger.Debug("sibling family is part of the lineage", "family", sf.family.ID)
			continue
		}
		if err := a.addSiblingSpouses(sf); err != nil {
			return err
		}
		if len(sf.family.Children) > 0 {
			a.addSiblingChildren(sf)
		}
	}
	return nil
}

// filterFamilies walks upward from the root family and records every
// reached family with its depth. The own families of siblings met on the
// way are collected for later insertion.
func (a *ancestors) filterFamilies(ctx context.Context) error {
	root, err := a.root()
	if err != nil {
		return err
	}
	a.include(root, 0)

	maxSibling := a.cfg.MaxSiblingDepth()
	seen := make(map[*gedcom.Family]bool)
	pending := []*gedcom.Family{root}
	for depth := 0; depth < a.cfg.LayoutMaxDepth; depth++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var next []*gedcom.Family
		for _, f := range pending {
			var children []string
			for _, spouse := range []*gedcom.Individual{f.Husb, f.Wife} {
				if spouse == nil || spouse.Famc == nil {
					continue
				}
				parents := spouse.Famc
				if !a.include(parents, depth+1) {
					continue
				}
				next = append(next, parents)
				children = append(children, parents.Children...)
			}

			// The siblings are children of depth+1 and stand in row depth.
			if depth >= maxSibling {
				continue
			}
			for _, id := range children {
				child := a.model.Individual(id)
				if child == nil || child.Fams == nil || a.included(child.Fams) || seen[child.Fams] {
					continue
				}
				seen[child.Fams] = true
				a.siblings = append(a.siblings, siblingFamily{family: child.Fams, depth: depth})
			}
		}
		pending = next
	}

	for _, f := range a.filtered {
		a.sortChildren(f)
	}
	a.logger.Debug("filtered families", "root", root.ID, "families", len(a.filtered), "siblings", len(a.siblings))
	return nil
}

// sortChildren moves daughters who married into the lineage to the left
// and sons who did to the right. The sort is stable, so sorting again
// changes nothing.
func (a *ancestors) sortChildren(f *gedcom.Family) {
	rank := func(id string) int {
		i := a.model.Individual(id)
		if i == nil || i.Fams == nil || !a.included(i.Fams) {
			return 1
		}
		switch i.Sex {
		case gedcom.SexFemale:
			return 0
		case gedcom.SexMale:
			return 2
		}
		return 1
	}
	slices.SortStableFunc(f.Children, func(x, y string) int {
		return rank(x) - rank(y)
	})
}

// addSiblingSpouses places the partner of a sibling right before the
// sibling, together with their marriage point. Ordering edges that
// pointed at a sister now point at her husband; those leaving a brother
// now leave his wife.
func (a *ancestors) addSiblingSpouses(sf siblingFamily) error {
	f := sf.family
	row := a.graph.Subgraph(dot.DepthName(sf.depth))
	if row == nil {
		return gerrors.Invariant("no row %s for sibling family %s", dot.DepthName(sf.depth), f.ID)
	}

	var ids []string
	if f.Wife != nil {
		ids = append(ids, f.Wife.ID)
	}
	if f.Husb != nil {
		ids = append(ids, f.Husb.ID)
	}
	existing, pos, ok := row.IndexOfNode(ids...)
	if !ok {
		return gerrors.Invariant("sibling family %s has no spouse placed in %s", f.ID, row.Name)
	}

	existingIsWife := f.Wife != nil && existing == f.Wife.ID
	added := f.Wife
	if existingIsWife {
		added = f.Husb
	}
	if added == nil {
		a.logger.Debug("sibling family has a single spouse", "family", f.ID)
		return nil
	}

	// A leftmost sibling has no ordering edge, so nothing may be rewritten.
	for _, e := range row.Edges() {
		if !e.Invisible {
			continue
		}
		if existingIsWife && e.To == existing {
			e.To = added.ID
		} else if !existingIsWife && e.From == existing {
			e.From = added.ID
		}
	}

	marriage, name := a.marriage(f)
	row.Insert(pos, a.node(added))
	row.Insert(pos, marriage)
	row.Append(a.style.Edge(f.Husb.ID, name, f.Husb.FullName()))
	row.Append(a.style.Edge(name, f.Wife.ID, f.Wife.FullName()))
	return nil
}

// addSiblingChildren places the children of a sibling family in the row
// below, chained after the last child of the family standing left of the
// husband. Without such an anchor the children are left out.
func (a *ancestors) addSiblingChildren(sf siblingFamily) {
	f := sf.family
	if sf.depth > a.cfg.LayoutMaxSiblingFamilyDepth {
		return
	}
	if f.Husb == nil {
		a.logger.Debug("sibling family without husband, children skipped", "family", f.ID)
		return
	}

	row := a.graph.Subgraph(dot.DepthName(sf.depth))
	prevID, ok := row.PrevOf(f.Husb.ID)
	prev := a.model.Individual(prevID)
	if !ok || prev == nil {
		a.logger.Debug("no anchor left of sibling, children skipped", "family", f.ID, "husband", f.Husb.ID)
		return
	}
	if prev.Fams == nil || len(prev.Fams.Children) == 0 {
		a.logger.Debug("anchor has no children, children skipped", "family", f.ID, "anchor", prev.ID)
		return
	}
	last := prev.Fams.Children[len(prev.Fams.Children)-1]

	connects := a.graph.Subgraph(dot.ConnectsName(sf.depth))
	childRow := a.graph.Subgraph(dot.DepthName(sf.depth - 1))
	if connects == nil || childRow == nil {
		a.logger.Debug("rows for sibling children missing", "family", f.ID, "depth", sf.depth)
		return
	}

	children := a.children(f)
	ids := childIDs(children)
	_, marriage := a.marriage(f)
	if n := len(ids); n%2 == 0 {
		ids = slices.Insert(ids, n/2, marriage)
	} else {
		connects.Prepend(dot.Point(dot.ConnectName(marriage), ""))
	}
	connects.Append(a.style.Edge(marriage, dot.ConnectName(marriage), ""))

	prevChild := last
	for _, c := range ids {
		if slices.Contains(ids, prevChild) {
			connects.Prepend(a.style.Edge(dot.ConnectName(prevChild), dot.ConnectName(c), ""))
		} else {
			connects.Prepend(a.style.Invisible(dot.ConnectName(prevChild), dot.ConnectName(c)))
		}
		connects.Prepend(dot.Point(dot.ConnectName(c), ""))
		prevChild = c
	}

	prevChild = last
	for _, c := range children {
		childRow.Prepend(a.style.Invisible(prevChild, c.ID))
		childRow.Prepend(a.node(c))
		childRow.Append(a.style.Edge(dot.ConnectName(c.ID), c.ID, ""))
		prevChild = c.ID
	}
}
