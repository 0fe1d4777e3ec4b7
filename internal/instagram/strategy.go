package instagram

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/biomail/internal/config"
)

// Strategy is one way of locating a field on a profile page.
type Strategy struct {
	config.SelectorSpec
}

// Lookup returns the first plausible value among the elements matched by
// the strategy's selector.
func (s Strategy) Lookup(doc *goquery.Document) (string, bool) {
	var value string
	doc.Find(s.CSS).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		candidate := s.read(sel)
		if s.plausible(candidate) {
			value = candidate
			return false
		}
		return true
	})
	return value, value != ""
}

func (s Strategy) read(sel *goquery.Selection) string {
	if s.Attr != "" {
		v, _ := sel.Attr(s.Attr)
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(sel.Text())
}

func (s Strategy) plausible(v string) bool {
	if v == "" {
		return false
	}
	if s.MinLength > 0 && utf8.RuneCountInString(v) < s.MinLength {
		return false
	}
	if s.LinkText && (!strings.Contains(v, ".") || strings.HasPrefix(v, "@")) {
		return false
	}
	return true
}

// Chain is an ordered fallback list of strategies for one field.
type Chain []Strategy

// NewChain builds a chain from configured selector specs.
func NewChain(specs []config.SelectorSpec) Chain {
	chain := make(Chain, 0, len(specs))
	for _, spec := range specs {
		chain = append(chain, Strategy{SelectorSpec: spec})
	}
	return chain
}

// Resolve tries each strategy in order. It returns the value, the index of
// the strategy that produced it, and whether any strategy succeeded.
func (c Chain) Resolve(doc *goquery.Document) (string, int, bool) {
	for i, s := range c {
		if v, ok := s.Lookup(doc); ok {
			return v, i, true
		}
	}
	return "", -1, false
}
