package website

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/biomail/internal/email"
)

// invisible lists elements whose content never renders as text.
const invisible = "head, script, style, noscript, template, svg, iframe, object"

// Content is the reduced form of an HTML document.
type Content struct {
	// Text is the visible text with whitespace collapsed. Block elements
	// are separated by a space; inline elements join their neighbours.
	Text string

	// MailLinks holds the recipients of mailto: links.
	MailLinks []string
}

// ExtractContent parses an HTML document and reduces it to visible text
// and mail links.
func ExtractContent(r io.Reader) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	content := &Content{}
	seen := make(map[string]struct{})
	doc.Find(`a[href]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		for _, addr := range email.MailtoAddresses(href) {
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			content.MailLinks = append(content.MailLinks, addr)
		}
	})

	doc.Find(invisible).Remove()

	var sb strings.Builder
	for _, n := range doc.Nodes {
		collectText(n, &sb)
	}
	content.Text = strings.Join(strings.Fields(sb.String()), " ")
	return content, nil
}

// blockElements break the text flow. Everything else is treated as inline.
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true,
	atom.Blockquote: true, atom.Body: true, atom.Br: true,
	atom.Caption: true, atom.Dd: true, atom.Details: true,
	atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true,
	atom.Footer: true, atom.Form: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Header: true,
	atom.Hr: true, atom.Li: true, atom.Main: true,
	atom.Nav: true, atom.Ol: true, atom.P: true,
	atom.Pre: true, atom.Section: true, atom.Summary: true,
	atom.Table: true, atom.Td: true, atom.Th: true,
	atom.Tr: true, atom.Ul: true,
}

// collectText appends the raw text under n. Block elements are wrapped in
// newlines so that adjacent blocks never fuse into one token, while text
// split across inline elements is joined as rendered.
func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
	if block {
		sb.WriteByte('\n')
	}
}
