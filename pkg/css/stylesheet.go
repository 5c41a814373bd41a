package css

import (
	"fmt"
	"strings"
)

// SelectorPart is one compound selector: tag, id and classes that must all match.
type SelectorPart struct {
	Element string // "" or "*" matches any tag
	ID      string
	Classes []string
}

type Combinator int

const (
	DescendantCombinator Combinator = iota // "a b"
	ChildCombinator                        // "a > b"
)

// Selector is a chain of compound parts joined by combinators, left to right.
type Selector struct {
	Raw         string
	Parts       []SelectorPart
	Combinators []Combinator // len(Parts)-1 entries
	Specificity int
}

// Rule represents a CSS rule (selector + declarations)
type Rule struct {
	Selector     Selector
	Declarations map[string]string // property -> value
	Order        int               // source order, breaks specificity ties
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses CSS stylesheet content into rules. Malformed rules
// and at-rules are skipped.
func ParseStylesheet(css string) (*Stylesheet, error) {
	stylesheet := &Stylesheet{Rules: make([]Rule, 0)}

	css = strings.TrimSpace(stripComments(css))
	if css == "" {
		return stylesheet, nil
	}

	order := 0
	for _, ruleStr := range splitRules(css) {
		if strings.HasPrefix(strings.TrimSpace(ruleStr), "@") {
			continue
		}
		rules, err := parseRule(ruleStr)
		if err != nil {
			continue
		}
		for _, rule := range rules {
			rule.Order = order
			order++
			stylesheet.Rules = append(stylesheet.Rules, rule)
		}
	}

	return stylesheet, nil
}

func stripComments(css string) string {
	var b strings.Builder
	for {
		start := strings.Index(css, "/*")
		if start < 0 {
			b.WriteString(css)
			return b.String()
		}
		b.WriteString(css[:start])
		end := strings.Index(css[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		css = css[start+2+end+2:]
	}
}

// splitRules splits CSS into individual rules
func splitRules(css string) []string {
	rules := make([]string, 0)
	depth := 0
	start := 0

	for i, ch := range css {
		if ch == '{' {
			depth++
		} else if ch == '}' {
			depth--
			if depth == 0 {
				ruleStr := css[start : i+1]
				if strings.TrimSpace(ruleStr) != "" {
					rules = append(rules, ruleStr)
				}
				start = i + 1
			}
			if depth < 0 {
				depth = 0
				start = i + 1
			}
		}
	}

	return rules
}

// parseRule parses "sel1, sel2 { decls }" into one rule per selector.
func parseRule(ruleStr string) ([]Rule, error) {
	bracePos := strings.Index(ruleStr, "{")
	if bracePos == -1 {
		return nil, fmt.Errorf("no opening brace found")
	}
	declEnd := strings.LastIndex(ruleStr, "}")
	if declEnd == -1 {
		declEnd = len(ruleStr)
	}
	declarations := parseDeclarations(ruleStr[bracePos+1 : declEnd])

	var rules []Rule
	for _, raw := range strings.Split(ruleStr[:bracePos], ",") {
		selector, err := ParseSelector(raw)
		if err != nil {
			return nil, err
		}
		rules = append(rules, Rule{Selector: selector, Declarations: declarations})
	}
	return rules, nil
}

// ParseSelector parses a selector such as "div.note > p#intro".
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	sel := Selector{Raw: raw}
	if raw == "" {
		return sel, fmt.Errorf("empty selector")
	}

	tokens := strings.Fields(strings.ReplaceAll(raw, ">", " > "))
	pendingChild := false
	for _, tok := range tokens {
		if tok == ">" {
			pendingChild = true
			continue
		}
		part, spec, err := parseCompound(tok)
		if err != nil {
			return sel, err
		}
		if len(sel.Parts) > 0 {
			if pendingChild {
				sel.Combinators = append(sel.Combinators, ChildCombinator)
			} else {
				sel.Combinators = append(sel.Combinators, DescendantCombinator)
			}
		}
		pendingChild = false
		sel.Parts = append(sel.Parts, part)
		sel.Specificity += spec
	}
	if len(sel.Parts) == 0 || pendingChild {
		return sel, fmt.Errorf("malformed selector %q", raw)
	}
	return sel, nil
}

// parseCompound splits "tag#id.a.b" and returns its specificity
// (id 100, class 10, element 1).
func parseCompound(tok string) (SelectorPart, int, error) {
	var part SelectorPart
	spec := 0
	i := strings.IndexAny(tok, "#.")
	if i < 0 {
		i = len(tok)
	}
	part.Element = strings.ToLower(tok[:i])
	if part.Element != "" && part.Element != "*" {
		spec++
	}
	rest := tok[i:]
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, "#.")
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		rest = rest[end:]
		if name == "" || strings.ContainsAny(name, ":[") {
			return part, 0, fmt.Errorf("unsupported selector %q", tok)
		}
		if kind == '#' {
			part.ID = name
			spec += 100
		} else {
			part.Classes = append(part.Classes, name)
			spec += 10
		}
	}
	if strings.ContainsAny(part.Element, ":[") {
		return part, 0, fmt.Errorf("unsupported selector %q", tok)
	}
	return part, spec, nil
}
