package notifications

import "regexp"

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)

// ExtractMentions returns the distinct usernames tagged with @ in text, in
// order of first appearance. Callers resolve them against the user store;
// unknown names simply resolve to nothing.
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	usernames := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		usernames = append(usernames, m[1])
	}
	return usernames
}
