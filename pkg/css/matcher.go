package css

import (
	"strings"
)

// Element is the view of a document element that selector matching needs.
// Parent returns nil for the root.
type Element interface {
	TagName() string
	Attribute(name string) (string, bool)
	Parent() Element
}

// MatchesSelector returns true if the element matches the complex selector
func MatchesSelector(el Element, selector Selector) bool {
	if el == nil || len(selector.Parts) == 0 {
		return false
	}
	// Start matching from the rightmost part (the target element)
	return matchesFrom(el, selector, len(selector.Parts)-1)
}

func matchesFrom(el Element, selector Selector, partIndex int) bool {
	if !matchesSelectorPart(el, selector.Parts[partIndex]) {
		return false
	}
	if partIndex == 0 {
		return true
	}

	switch selector.Combinators[partIndex-1] {
	case ChildCombinator:
		parent := el.Parent()
		return parent != nil && matchesFrom(parent, selector, partIndex-1)
	default:
		for anc := el.Parent(); anc != nil; anc = anc.Parent() {
			if matchesFrom(anc, selector, partIndex-1) {
				return true
			}
		}
		return false
	}
}

// matchesSelectorPart checks if an element matches a single compound part
func matchesSelectorPart(el Element, part SelectorPart) bool {
	if part.Element != "" && part.Element != "*" && el.TagName() != part.Element {
		return false
	}

	if part.ID != "" {
		if id, ok := el.Attribute("id"); !ok || id != part.ID {
			return false
		}
	}

	if len(part.Classes) > 0 {
		classAttr, ok := el.Attribute("class")
		if !ok {
			return false
		}
		nodeClasses := strings.Fields(classAttr)
		for _, required := range part.Classes {
			found := false
			for _, c := range nodeClasses {
				if c == required {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}

	return true
}
