package emit

// DeepMerge returns a new map holding a overlaid with b. Keys present in
// both combine recursively when both values are maps; otherwise the
// value from b wins. Neither input is modified.
func DeepMerge(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = clone(v)
	}
	for k, v := range b {
		prev, ok := out[k].(map[string]any)
		next, isMap := v.(map[string]any)
		if ok && isMap {
			out[k] = DeepMerge(prev, next)
			continue
		}
		out[k] = clone(v)
	}
	return out
}

func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return DeepMerge(t, nil)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = clone(e)
		}
		return out
	default:
		return v
	}
}
