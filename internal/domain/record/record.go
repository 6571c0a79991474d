package record

import "strings"

// Record is one imported row keyed by header name. Keys keep their original
// casing and insertion order.
type Record struct {
	keys   []string
	values map[string]Cell
}

// New returns an empty record
func New() *Record {
	return &Record{values: make(map[string]Cell)}
}

// Set adds or replaces a field. New keys are appended to the key order.
func (r *Record) Set(key string, c Cell) {
	if r.values == nil {
		r.values = make(map[string]Cell)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = c
}

// Get returns the cell stored under the exact key
func (r *Record) Get(key string) (Cell, bool) {
	if r == nil {
		return Cell{}, false
	}
	c, ok := r.values[key]
	return c, ok
}

// Keys returns a copy of the keys in insertion order
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Snapshot returns the field values rendered as strings, keyed by header
func (r *Record) Snapshot() map[string]string {
	out := make(map[string]string, r.Len())
	if r == nil {
		return out
	}
	for _, k := range r.keys {
		out[k] = r.values[k].String()
	}
	return out
}

// Resolve returns the value of the first alias present in the record.
// Each alias is tried as an exact key first, then case-insensitively against
// the record keys in insertion order. Alias order always wins over key order.
func Resolve(r *Record, aliases []string) (Cell, bool) {
	if r == nil {
		return Cell{}, false
	}
	for _, alias := range aliases {
		if c, ok := r.values[alias]; ok {
			return c, true
		}
		for _, k := range r.keys {
			if strings.EqualFold(k, alias) {
				return r.values[k], true
			}
		}
	}
	return Cell{}, false
}

// Resolve is the method form of the package level Resolve
func (r *Record) Resolve(aliases ...string) (Cell, bool) {
	return Resolve(r, aliases)
}
