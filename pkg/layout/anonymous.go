package layout

import "strings"

// Anonymous box generation (CSS 2.1 §9.2.1.1 and §9.2.2.1).

// NormalizeTree fixes up the box tree so every block container holds
// either only inline-level or only block-level children. It is safe to
// call repeatedly.
func NormalizeTree(root *Box) {
	normalizeBox(root)
}

func normalizeBox(b *Box) {
	if b.Display() == DisplayNone {
		return
	}
	b.moveTextToChild()

	for _, c := range append([]*Box(nil), b.children...) {
		normalizeBox(c)
	}

	if b.IsInline() && b.Display() == DisplayInline && b.hasBlockChild() {
		// An inline holding a block becomes a block itself.
		b.SetProperty("display", DisplayBlock)
	}
	if isBlockLike(b.Display()) && b.hasBlockChild() && b.hasInlineChild() {
		b.wrapInlineRuns()
	}
}

// moveTextToChild hands the text of a box that cannot flow it itself to a
// new anonymous inline first child.
func (b *Box) moveTextToChild() {
	if !b.hasText || b.IsInline() || b.Kind != KindGeneric {
		return
	}
	if len(b.children) == 0 && strings.TrimSpace(b.text) == "" {
		return
	}
	child := newBox(nil, KindGeneric)
	child.SetText(b.text)
	b.insertChild(child, 0)
	b.text = ""
	b.hasText = false
	b.Words = nil
}

func (b *Box) hasBlockChild() bool {
	for _, c := range b.children {
		if c.inFlow() && !c.IsInline() {
			return true
		}
	}
	return false
}

func (b *Box) hasInlineChild() bool {
	for _, c := range b.children {
		if c.inFlow() && c.IsInline() {
			return true
		}
	}
	return false
}

// inFlow reports a displayed box that is neither absolutely nor fixed positioned.
func (b *Box) inFlow() bool {
	if b.Display() == DisplayNone {
		return false
	}
	pos := b.Position()
	return pos != PositionAbsolute && pos != PositionFixed
}

// wrapInlineRuns puts every run of consecutive inline children into an
// anonymous block. Runs holding only whitespace are dropped.
func (b *Box) wrapInlineRuns() {
	var run []*Box
	flush := func() {
		if len(run) == 0 {
			return
		}
		defer func() { run = nil }()
		blank := true
		for _, c := range run {
			if !c.IsSpaceOrEmpty() {
				blank = false
				break
			}
		}
		if blank {
			for _, c := range run {
				c.Remove()
			}
			return
		}
		anon := newBox(nil, KindGeneric)
		anon.SetProperty("display", DisplayBlock)
		idx := b.indexOf(run[0])
		b.insertChild(anon, idx)
		for _, c := range run {
			c.Remove()
			anon.insertChild(c, len(anon.children))
		}
	}

	for _, c := range append([]*Box(nil), b.children...) {
		if c.inFlow() && c.IsInline() {
			run = append(run, c)
			continue
		}
		if c.Display() == DisplayNone || !c.inFlow() {
			// Out-of-flow boxes neither join nor end a run.
			if len(run) > 0 {
				run = append(run, c)
			}
			continue
		}
		flush()
	}
	flush()
}
