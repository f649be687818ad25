package chat

import "strings"

// Candidates returns primary followed by fallbacks with blanks removed and
// duplicates dropped, keeping the first occurrence.
func Candidates(primary string, fallbacks []string) []string {
	seen := make(map[string]bool, len(fallbacks)+1)
	out := make([]string, 0, len(fallbacks)+1)
	for _, id := range append([]string{primary}, fallbacks...) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
