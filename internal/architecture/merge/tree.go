package merge

// MergeTree deep-merges incoming into existing. Only object-vs-object
// collisions recurse; on any other collision the incoming value wins. Keys that
// exist only in existing are preserved. The result is a new map; subtrees that
// did not change are shared with the inputs.
func MergeTree(existing, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, in := range incoming {
		inObj, inIsObj := in.(map[string]any)
		curObj, curIsObj := out[k].(map[string]any)
		if inIsObj && curIsObj {
			out[k] = MergeTree(curObj, inObj)
			continue
		}
		out[k] = in
	}
	return out
}
