package layout

// ContainingBlock returns the nearest block, list-item, table, table-cell
// or caption ancestor. The root is its own containing block and a list
// marker uses its list item.
func (b *Box) ContainingBlock() *Box {
	if b.parent == nil {
		if b.owner != nil {
			return b.owner
		}
		return b
	}
	box := b.parent
	for box.parent != nil && !establishesContainingBlock(box.Display()) {
		box = box.parent
	}
	return box
}

func establishesContainingBlock(display string) bool {
	switch display {
	case DisplayBlock, DisplayListItem, DisplayTable, DisplayTableCell, DisplayTableCaption:
		return true
	}
	return false
}

// previousSibling returns the closest preceding sibling taking part in
// normal flow, skipping hidden and out-of-flow boxes.
func (b *Box) previousSibling() *Box {
	p := b.parent
	if p == nil {
		return nil
	}
	idx := p.indexOf(b)
	for i := idx - 1; i >= 0; i-- {
		sib := p.children[i]
		if sib.Display() == DisplayNone {
			continue
		}
		if pos := sib.Position(); pos == PositionAbsolute || pos == PositionFixed {
			continue
		}
		return sib
	}
	return nil
}

// lastInFlowChild is the last child taking part in normal flow.
func (b *Box) lastInFlowChild() *Box {
	for i := len(b.children) - 1; i >= 0; i-- {
		c := b.children[i]
		if c.Display() == DisplayNone {
			continue
		}
		if pos := c.Position(); pos == PositionAbsolute || pos == PositionFixed {
			continue
		}
		return c
	}
	return nil
}

// positionedContainingBlock finds the containing block of an absolutely
// positioned box: the nearest positioned ancestor, or nil for the
// viewport of the engine. A detached tree has no viewport.
func (b *Box) positionedContainingBlock() (*Box, error) {
	for p := b.parent; p != nil; p = p.parent {
		if p.Position() != PositionStatic {
			return p, nil
		}
	}
	if b.eng == nil {
		return nil, ErrNoContainingBlock
	}
	return nil, nil
}

// IsPositioned returns true if the box has position != static
func (b *Box) IsPositioned() bool {
	return b.Position() != PositionStatic
}
