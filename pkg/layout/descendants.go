package layout

import (
	"context"

	"github.com/matzehuels/ged2dot/pkg/dot"
	"github.com/matzehuels/ged2dot/pkg/gedcom"
)

// descendants shows the children of a root family and their own families.
type descendants struct {
	*Layout
}

func (d *descendants) Name() string { return "descendants" }

func (d *descendants) Calc(ctx context.Context) error {
	if err := d.begin(); err != nil {
		return err
	}
	if err := d.filterFamilies(ctx); err != nil {
		return err
	}

	var pending []dot.Element
	for depth := 0; depth <= d.cfg.LayoutMaxDepth; depth++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		pending = d.buildRow(depth, pending, true)
		d.buildConnectorRow(depth)
	}
	return nil
}

func (d *descendants) filterFamilies(ctx context.Context) error {
	root, err := d.root()
	if err != nil {
		return err
	}
	d.include(root, 0)

	pending := []*gedcom.Family{root}
	for depth := 0; depth < d.cfg.LayoutMaxDepth; depth++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var next []*gedcom.Family
		for _, f := range pending {
			for _, child := range d.children(f) {
				if child.Fams == nil || !d.include(child.Fams, depth+1) {
					continue
				}
				next = append(next, child.Fams)
			}
		}
		pending = next
	}
	d.logger.Debug("filtered families", "root", root.ID, "families", len(d.filtered))
	return nil
}
