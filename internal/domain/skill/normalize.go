package skill

import "strings"

// MaxNameLength matches the width of skills.skill_name.
const MaxNameLength = 100

// Normalize turns raw skill input into taxonomy names. Entries may hold
// several comma-separated skills; each piece is trimmed and lower-cased,
// empty pieces are dropped and duplicates keep their first position.
// Normalize(Normalize(x)) equals Normalize(x).
func Normalize(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, entry := range raw {
		for _, piece := range strings.Split(entry, ",") {
			name := strings.ToLower(strings.TrimSpace(piece))
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Merge returns the order-stable union of two normalized lists and the
// skills from submitted that existing did not already hold.
func Merge(existing, submitted []string) (merged []string, added []string) {
	merged = make([]string, 0, len(existing)+len(submitted))
	seen := make(map[string]struct{}, len(existing)+len(submitted))
	for _, name := range existing {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		merged = append(merged, name)
	}
	added = make([]string, 0)
	for _, name := range submitted {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		merged = append(merged, name)
		added = append(added, name)
	}
	return merged, added
}
