package email

import (
	"net/url"
	"strings"
)

const mailtoScheme = "mailto:"

// MailtoAddresses returns the recipients of a mailto: URL. Query
// parameters such as subject are dropped and percent-escapes are decoded.
// The addresses are returned as written; they still need
// NormalizeAndVerify.
func MailtoAddresses(href string) []string {
	href = strings.TrimSpace(href)
	if len(href) < len(mailtoScheme) || !strings.EqualFold(href[:len(mailtoScheme)], mailtoScheme) {
		return nil
	}
	rest := href[len(mailtoScheme):]
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}
	if unescaped, err := url.PathUnescape(rest); err == nil {
		rest = unescaped
	}

	var addrs []string
	for _, part := range strings.Split(rest, ",") {
		if part = strings.TrimSpace(part); part != "" {
			addrs = append(addrs, part)
		}
	}
	return addrs
}
