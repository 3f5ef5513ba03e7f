package scanner

import (
	"sort"
	"strings"
)

// AliasTable maps a reference extension (".js", ".css", or "" for none) to
// the concrete extensions tried for it, in priority order.
type AliasTable map[string][]string

// DefaultAliases is the alias table used when none is configured
func DefaultAliases() AliasTable {
	return AliasTable{
		".js":  {"js", "jsx", "ts", "tsx"},
		".css": {"css", "scss", "sass", "less"},
	}
}

// normalizeExt turns "js" and ".js" into ".js"; "" stays "".
func normalizeExt(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// NewAliasTable normalizes raw so every key has a leading dot (or is "")
// and no candidate has one. Keys are taken in sorted order; when two keys
// name the same extension, as "js" and ".js" do, the first one wins.
func NewAliasTable(raw map[string][]string) AliasTable {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	table := make(AliasTable, len(raw))
	for _, key := range keys {
		ext := normalizeExt(key)
		if _, taken := table[ext]; taken {
			continue
		}
		candidates := make([]string, len(raw[key]))
		for i, c := range raw[key] {
			candidates[i] = strings.TrimPrefix(c, ".")
		}
		table[ext] = candidates
	}
	return table
}

// Candidates returns the concrete extensions (without dots) to try for
// ext. The table must come from NewAliasTable or DefaultAliases.
func (t AliasTable) Candidates(ext string) []string {
	return t[normalizeExt(ext)]
}
