package email

import "regexp"

// pattern matches the lexical shape of an email address.
// The domain must end in a dot followed by at least two letters.
var pattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Extract returns every substring of text that looks like an email address.
// Duplicates are removed while keeping the order of first occurrence.
// Case is preserved; normalization happens in NormalizeAndVerify.
func Extract(text string) []string {
	if text == "" {
		return nil
	}

	matches := pattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	result := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		result = append(result, m)
	}
	return result
}
