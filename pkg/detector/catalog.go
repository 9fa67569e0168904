package detector

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

type compiledRule struct {
	Rule
	patterns []*regexp.Regexp
}

// Catalog is an ordered, read-only set of detection rules.
// Declaration order is the tie-break when confidences are equal.
type Catalog struct {
	rules  []compiledRule
	byName map[string]int
}

// NewCatalog validates and compiles rules into a Catalog
func NewCatalog(rules ...Rule) (*Catalog, error) {
	c := &Catalog{
		rules:  make([]compiledRule, 0, len(rules)),
		byName: make(map[string]int, len(rules)),
	}

	var errs []error
	for _, r := range rules {
		if r.Name == "" {
			errs = append(errs, errors.New("rule with empty name"))
			continue
		}
		if _, dup := c.byName[r.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate rule %q", r.Name))
			continue
		}
		if !r.Kind.Valid() {
			errs = append(errs, fmt.Errorf("rule %q: invalid kind %d", r.Name, int(r.Kind)))
			continue
		}

		cr := compiledRule{Rule: cloneRule(r)}
		for _, expr := range r.Patterns {
			re, err := regexp.Compile(expr)
			if err != nil {
				errs = append(errs, fmt.Errorf("rule %q: pattern %q: %w", r.Name, expr, err))
				continue
			}
			cr.patterns = append(cr.patterns, re)
		}

		c.byName[r.Name] = len(c.rules)
		c.rules = append(c.rules, cr)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// MustCatalog is NewCatalog that panics on invalid rules
func MustCatalog(rules ...Rule) *Catalog {
	c, err := NewCatalog(rules...)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
)

// DefaultCatalog returns the built-in rule catalog
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		defaultCatalog = MustCatalog(defaultRules()...)
	})
	return defaultCatalog
}

// Len returns the number of rules
func (c *Catalog) Len() int {
	return len(c.rules)
}

// Rules returns a copy of the rules in declaration order
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, cloneRule(r.Rule))
	}
	return out
}

// Lookup finds a rule by name
func (c *Catalog) Lookup(name string) (Rule, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Rule{}, false
	}
	return cloneRule(c.rules[i].Rule), true
}

func cloneRule(r Rule) Rule {
	r.Files = append([]string(nil), r.Files...)
	r.ManifestKeys = append([]string(nil), r.ManifestKeys...)
	r.Patterns = append([]string(nil), r.Patterns...)
	return r
}
