package css

import (
	"sort"
)

// ComputeStyle computes the declared style for an element: defaults first,
// then matching rules by ascending specificity and source order, then the
// inline style attribute.
func ComputeStyle(el Element, defaults *Style, stylesheets []*Stylesheet) *Style {
	finalStyle := NewStyle()
	finalStyle.Merge(defaults)

	allRules := make([]Rule, 0)
	for _, stylesheet := range stylesheets {
		for _, rule := range stylesheet.Rules {
			if MatchesSelector(el, rule.Selector) {
				allRules = append(allRules, rule)
			}
		}
	}

	sort.SliceStable(allRules, func(i, j int) bool {
		if allRules[i].Selector.Specificity != allRules[j].Selector.Specificity {
			return allRules[i].Selector.Specificity < allRules[j].Selector.Specificity
		}
		return allRules[i].Order < allRules[j].Order
	})

	for _, rule := range allRules {
		for property, value := range rule.Declarations {
			finalStyle.Set(property, value)
		}
	}

	// Inline styles win over every stylesheet rule.
	if styleAttr, ok := el.Attribute("style"); ok {
		finalStyle.Merge(ParseInlineStyle(styleAttr))
	}

	return finalStyle
}
