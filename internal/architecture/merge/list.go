package merge

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"archrecon/internal/types"
)

// Stats counts what a list merge did with the incoming items.
type Stats struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Unkeyed int `json:"unkeyed"`
}

// Lister upserts incoming list items into an existing list by identity key.
type Lister struct {
	// NewKey generates keys for items without an identity. Keys are internal to
	// a single merge and never stored.
	NewKey func() string
}

// MergeList merges incoming into existing using the default Lister.
func MergeList(existing, incoming []types.Item, section types.Section) []types.Item {
	out, _ := Lister{}.Merge(existing, incoming, section)
	return out
}

// Merge returns the merged list and statistics. Existing items keep their
// position; incoming items with a known key shallow-merge into the stored item;
// everything else is appended in input order. Items that resolve no key are
// kept under a synthetic key, so they are never dropped, but a later merge
// cannot target them. Inputs are never mutated.
func (l Lister) Merge(existing, incoming []types.Item, section types.Section) ([]types.Item, Stats) {
	var st Stats
	if existing == nil {
		out := make([]types.Item, len(incoming))
		copy(out, incoming)
		st.Added = len(incoming)
		return out, st
	}
	if incoming == nil {
		out := make([]types.Item, len(existing))
		copy(out, existing)
		return out, st
	}

	newKey := l.NewKey
	if newKey == nil {
		newKey = syntheticKey
	}

	m := newOrderedItems(len(existing) + len(incoming))
	for _, it := range existing {
		k, ok := ResolveKey(section, it)
		if !ok || m.has(k) {
			// Duplicate keys in stored data stay as separate entries.
			k = m.freshKey(newKey)
		}
		m.put(k, it)
	}

	for _, it := range incoming {
		k, ok := ResolveKey(section, it)
		if !ok {
			m.put(m.freshKey(newKey), cloneItem(it))
			st.Unkeyed++
			continue
		}
		if cur, found := m.get(k); found {
			m.put(k, shallowMerge(section, cur, it))
			st.Updated++
			continue
		}
		m.put(k, cloneItem(it))
		st.Added++
	}
	return m.values(), st
}

// shallowMerge overrides stored fields with every field present on incoming.
// Identity fields that only differ by case keep the stored spelling. A field
// cannot be removed by omitting it.
func shallowMerge(section types.Section, stored, incoming types.Item) types.Item {
	out := make(types.Item, len(stored)+len(incoming))
	for k, v := range stored {
		out[k] = v
	}
	for k, v := range incoming {
		if isCandidate(section, k) {
			prev, okPrev := keyString(stored[k])
			next, okNext := keyString(v)
			if okPrev && okNext && strings.EqualFold(prev, next) {
				continue
			}
		}
		out[k] = v
	}
	return out
}

func cloneItem(in types.Item) types.Item {
	if in == nil {
		return types.Item{}
	}
	out := make(types.Item, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func syntheticKey() string {
	return fmt.Sprintf("~%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
}

// AsItems coerces a decoded JSON value into a list of items. Non-list values
// yield nil; scalar list elements are wrapped as {"value": x}.
func AsItems(v any) []types.Item {
	switch x := v.(type) {
	case []types.Item:
		return x
	case []any:
		out := make([]types.Item, 0, len(x))
		for _, e := range x {
			switch item := e.(type) {
			case map[string]any:
				out = append(out, item)
			case nil:
			default:
				out = append(out, types.Item{"value": item})
			}
		}
		return out
	}
	return nil
}

type orderedItems struct {
	keys  []string
	index map[string]int
	items []types.Item
}

func newOrderedItems(capacity int) *orderedItems {
	return &orderedItems{
		keys:  make([]string, 0, capacity),
		index: make(map[string]int, capacity),
		items: make([]types.Item, 0, capacity),
	}
}

func (o *orderedItems) has(k string) bool {
	_, ok := o.index[k]
	return ok
}

func (o *orderedItems) get(k string) (types.Item, bool) {
	i, ok := o.index[k]
	if !ok {
		return nil, false
	}
	return o.items[i], true
}

func (o *orderedItems) put(k string, it types.Item) {
	if i, ok := o.index[k]; ok {
		o.items[i] = it
		return
	}
	o.index[k] = len(o.items)
	o.keys = append(o.keys, k)
	o.items = append(o.items, it)
}

const maxKeyAttempts = 8

// freshKey asks gen for an unused key a bounded number of times, then falls
// back to syntheticKey.
func (o *orderedItems) freshKey(gen func() string) string {
	for i := 0; i < maxKeyAttempts; i++ {
		if k := gen(); !o.has(k) {
			return k
		}
	}
	for {
		if k := syntheticKey(); !o.has(k) {
			return k
		}
	}
}

func (o *orderedItems) values() []types.Item {
	out := make([]types.Item, len(o.items))
	copy(out, o.items)
	return out
}
