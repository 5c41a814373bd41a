package layout

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// PerformLayout lays out b and its subtree against g. A fault inside the
// box is recovered, reported through the engine's ErrorReporter and
// returned; the box then contributes no height for this pass. Faults in
// descendants are reported by the descendant and do not reach the caller.
func (b *Box) PerformLayout(g Graphics) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
		if err != nil {
			kind := kindOf(err, ErrLayout)
			b.SetActualBottom(b.Location.Y)
			b.reportError(kind, "box layout failed", err)
			var le *Error
			if !errors.As(err, &le) {
				err = &Error{Kind: kind, Err: err}
			}
		}
	}()
	return b.performLayoutImp(g)
}

func (b *Box) reportError(kind ErrorKind, message string, err error) {
	if b.eng != nil && b.eng.reporter != nil {
		b.eng.reporter.ReportError(kind, message, err)
		return
	}
	b.logger().Error(message, zap.String("kind", kind.String()), zap.String("tag", b.TagName()), zap.Error(err))
}

func (b *Box) performLayoutImp(g Graphics) error {
	display := b.Display()
	if display == DisplayNone {
		return nil
	}
	b.resetRectangles()
	b.measureWordsSize(g)

	var err error
	switch {
	case b.Kind == KindHorizontalRule:
		b.layoutHorizontalRule()
	case isBlockLike(display):
		err = b.layoutBlock(g)
	default:
		if prev := b.previousSibling(); prev != nil {
			if b.Location == (Point{}) {
				b.Location = prev.Location
			}
			b.bottom = prev.bottom
		}
	}
	if err != nil {
		return err
	}

	if b.HasExplicitHeight() && b.Kind != KindHorizontalRule {
		h := b.ActualHeight() + b.ActualPaddingTop() + b.ActualPaddingBottom() +
			b.ActualBorderTopWidth() + b.ActualBorderBottomWidth()
		b.SetActualBottom(math.Max(b.bottom, b.Location.Y+h))
	} else {
		b.SetActualBottom(math.Max(b.bottom, b.Location.Y))
	}

	b.createListMarker(g)
	b.updateDocumentSize()
	return nil
}

// layoutBlock positions and sizes a block-level box, then lays out its
// content as a table, as line boxes or as child blocks.
func (b *Box) layoutBlock(g Graphics) error {
	display := b.Display()
	cb := b.ContainingBlock()

	// Cells and captions are sized and placed by their table.
	sizedByTable := display == DisplayTableCell || display == DisplayTableCaption
	if !sizedByTable && display != DisplayTable && display != DisplayInlineTable {
		avail := b.containingWidth()
		if w, ok := b.ActualWidth(); ok {
			b.Size.Width = w + b.ActualPaddingLeft() + b.ActualPaddingRight() +
				b.ActualBorderLeftWidth() + b.ActualBorderRightWidth()
		} else {
			b.Size.Width = avail - b.ActualMarginLeft() - b.ActualMarginRight()
		}
		if b.Size.Width < 0 {
			b.Size.Width = 0
		}
	}

	if !sizedByTable {
		switch {
		case b.Position() == PositionFixed:
			b.Location = Point{}
		case b.parent == nil:
			b.Location = Point{X: b.ActualMarginLeft(), Y: b.ActualMarginTop()}
		default:
			prev := b.previousSibling()
			left := cb.Location.X + cb.ActualBorderLeftWidth() + cb.ActualPaddingLeft() + b.ActualMarginLeft()
			top := b.parent.ClientTop()
			if prev != nil {
				top = prev.bottom
			}
			top += b.marginTopCollapse(prev)
			b.Location = Point{X: left, Y: top}
		}
		b.bottom = b.Location.Y
	}

	switch {
	case display == DisplayTable || display == DisplayInlineTable:
		if err := layoutTable(g, b); err != nil {
			return err
		}
	case b.containsInlinesOnly():
		b.bottom = b.Location.Y
		b.createLineBoxes(g)
	default:
		for _, c := range b.children {
			if err := c.PerformLayout(g); err != nil {
				b.logger().Debug("child layout skipped", zap.String("tag", c.TagName()), zap.Error(err))
			}
		}
		b.SetActualRight(b.calculateActualRight())
		b.SetActualBottom(b.marginBottomCollapse())
	}

	if pos := b.Position(); pos == PositionAbsolute || pos == PositionFixed {
		if err := b.applyAbsolutePositioning(); err != nil {
			return fmt.Errorf("position %s box: %w", b.TagName(), err)
		}
	}
	return nil
}

// containsInlinesOnly reports whether every displayed child is inline-level.
func (b *Box) containsInlinesOnly() bool {
	for _, c := range b.children {
		if c.Display() == DisplayNone {
			continue
		}
		if !c.IsInline() {
			return false
		}
	}
	return true
}

// calculateActualRight shrinks an unconstrained block to its widest child.
func (b *Box) calculateActualRight() float64 {
	if b.ActualRight() <= unboundedThreshold {
		return b.ActualRight()
	}
	maxRight := 0.0
	for _, c := range b.children {
		maxRight = math.Max(maxRight, c.ActualRight()+c.ActualMarginRight())
	}
	return maxRight + b.ActualPaddingRight() + b.ActualMarginRight() + b.ActualBorderRightWidth()
}

// updateDocumentSize grows the engine's document extent to cover b.
func (b *Box) updateDocumentSize() {
	eng := b.eng
	if eng == nil || eng.root == nil || b.IsFixed() {
		return
	}
	origin := eng.root.Location
	width := b.MinimumWidth() + widthMarginDeep(b)
	if b.Size.Width < unboundedThreshold {
		width = math.Max(width, b.ActualRight()-origin.X)
	}
	eng.actualSize.Width = math.Max(eng.actualSize.Width, width)
	eng.actualSize.Height = math.Max(eng.actualSize.Height, b.bottom-origin.Y)
}
