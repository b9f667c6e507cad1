package engine

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// maxDiffDepth bounds structural traversal. Anything nested deeper is
// compared as a single opaque leaf.
const maxDiffDepth = 128

// jsonChanges lists the paths whose values differ between two JSON
// documents, in sorted path order.
func jsonChanges(before, after string) ([]string, error) {
	var a, b interface{}
	if strings.TrimSpace(before) != "" {
		if err := json.Unmarshal([]byte(before), &a); err != nil {
			return nil, fmt.Errorf("parsing current document: %w", err)
		}
	}
	if strings.TrimSpace(after) != "" {
		if err := json.Unmarshal([]byte(after), &b); err != nil {
			return nil, fmt.Errorf("parsing updated document: %w", err)
		}
	}
	var out []string
	walkJSON("$", a, b, 0, &out)
	sort.Strings(out)
	return out, nil
}

func walkJSON(path string, a, b interface{}, depth int, out *[]string) {
	if reflect.DeepEqual(a, b) {
		return
	}
	if depth >= maxDiffDepth {
		*out = append(*out, "modified "+path)
		return
	}

	am, aIsMap := a.(map[string]interface{})
	bm, bIsMap := b.(map[string]interface{})
	if aIsMap && bIsMap {
		keys := make(map[string]bool, len(am)+len(bm))
		for k := range am {
			keys[k] = true
		}
		for k := range bm {
			keys[k] = true
		}
		for k := range keys {
			child := path + "." + k
			av, aok := am[k]
			bv, bok := bm[k]
			switch {
			case !aok:
				*out = append(*out, "added "+child)
			case !bok:
				*out = append(*out, "removed "+child)
			default:
				walkJSON(child, av, bv, depth+1, out)
			}
		}
		return
	}

	as, aIsSlice := a.([]interface{})
	bs, bIsSlice := b.([]interface{})
	if aIsSlice && bIsSlice {
		n := len(as)
		if len(bs) < n {
			n = len(bs)
		}
		for i := 0; i < n; i++ {
			walkJSON(fmt.Sprintf("%s[%d]", path, i), as[i], bs[i], depth+1, out)
		}
		for i := n; i < len(bs); i++ {
			*out = append(*out, fmt.Sprintf("added %s[%d]", path, i))
		}
		for i := n; i < len(as); i++ {
			*out = append(*out, fmt.Sprintf("removed %s[%d]", path, i))
		}
		return
	}

	*out = append(*out, "modified "+path)
}
