package agent

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Fields whose list values carry no meaningful order.
var setValuedFields = map[string]struct{}{
	"subtypes": {},
	"names":    {},
	"synonyms": {},
}

// interactionKey hashes an interaction's structure into a cache key that is
// stable across map iteration order and across element order of set-valued
// list fields.
func interactionKey(v any) string {
	sum := sha256.Sum256([]byte(canonicalize(v, false)))
	return hex.EncodeToString(sum[:])
}

func canonicalize(v any, asSet bool) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case dbtype.Node:
		// Endpoint snapshots may arrive as driver nodes; hash their
		// properties so they collide with the equivalent plain map.
		return canonicalize(t.Props, asSet)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			_, set := setValuedFields[k]
			parts = append(parts, k+"="+canonicalize(t[k], set))
		}
		return "{" + strings.Join(parts, ",") + "}"
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, canonicalize(e, false))
		}
		if asSet {
			sort.Strings(parts)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case []string:
		parts := append([]string(nil), t...)
		for i := range parts {
			parts[i] = canonicalize(parts[i], false)
		}
		if asSet {
			sort.Strings(parts)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%T(%v)", t, t)
	}
}
