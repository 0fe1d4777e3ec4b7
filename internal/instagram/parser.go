package instagram

import (
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/biomail/internal/config"
	"github.com/nao1215/biomail/internal/email"
	"github.com/nao1215/biomail/internal/model"
)

// redirectHost wraps outbound profile links.
const redirectHost = "l.instagram.com"

// Parser extracts a Profile from a rendered profile page.
type Parser struct {
	bio         Chain
	website     Chain
	displayName Chain
	category    Chain
	stats       string
	mailLinks   string
	logger      *slog.Logger
}

// NewParser creates a Parser for the given selectors.
func NewParser(sel config.Selectors, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		bio:         NewChain(sel.Bio),
		website:     NewChain(sel.Website),
		displayName: NewChain(sel.DisplayName),
		category:    NewChain(sel.Category),
		stats:       sel.Stats,
		mailLinks:   sel.MailLinks,
		logger:      logger,
	}
}

// ParseHTML parses r and extracts the profile of handle.
func (p *Parser) ParseHTML(r io.Reader, handle, pageURL string) (*model.Profile, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return p.Parse(doc, handle, pageURL), nil
}

// Parse extracts every field independently. Missing fields stay empty.
func (p *Parser) Parse(doc *goquery.Document, handle, pageURL string) *model.Profile {
	profile := &model.Profile{
		Handle: handle,
		URL:    pageURL,
	}

	if bio, ok := p.resolve(doc, handle, "bio", p.bio); ok {
		profile.Bio = norm.NFKC.String(bio)
	}
	if site, ok := p.resolve(doc, handle, "website", p.website); ok {
		profile.Website = NormalizeWebsite(site)
	}
	profile.DisplayName, _ = p.resolve(doc, handle, "display_name", p.displayName)
	profile.Category, _ = p.resolve(doc, handle, "category", p.category)

	p.parseStats(doc, profile)
	profile.MailLinks = p.parseMailLinks(doc)

	return profile
}

func (p *Parser) resolve(doc *goquery.Document, handle, field string, chain Chain) (string, bool) {
	v, idx, ok := chain.Resolve(doc)
	if !ok {
		p.logger.Debug("field not found", "handle", handle, "field", field)
		return "", false
	}
	p.logger.Debug("field found", "handle", handle, "field", field, "strategy", idx)
	return v, true
}

// parseStats classifies each counter by the label text of its grandparent.
func (p *Parser) parseStats(doc *goquery.Document, profile *model.Profile) {
	if p.stats == "" {
		return
	}
	doc.Find(p.stats).Each(func(_ int, sel *goquery.Selection) {
		value := strings.TrimSpace(sel.Text())
		if value == "" {
			return
		}
		label := strings.ToLower(sel.Parent().Parent().Text())
		switch {
		case strings.Contains(label, "followers"):
			profile.Followers = value
		case strings.Contains(label, "following"):
			profile.Following = value
		case strings.Contains(label, "posts"):
			profile.Posts = value
		}
	})
}

func (p *Parser) parseMailLinks(doc *goquery.Document) []string {
	if p.mailLinks == "" {
		return nil
	}
	var links []string
	seen := make(map[string]struct{})
	doc.Find(p.mailLinks).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		for _, addr := range email.MailtoAddresses(href) {
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			links = append(links, addr)
		}
	})
	return links
}

// NormalizeWebsite turns a profile link into a fetchable URL.
// It keeps the first whitespace separated token ("alice.biz and 2 more"),
// unwraps the platform's outbound redirect and defaults the scheme to https.
func NormalizeWebsite(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	link := withScheme(fields[0])

	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if strings.EqualFold(u.Hostname(), redirectHost) {
		if target := u.Query().Get("u"); target != "" {
			return withScheme(strings.TrimSpace(target))
		}
	}
	return link
}

func withScheme(link string) string {
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	return "https://" + strings.TrimPrefix(link, "//")
}
