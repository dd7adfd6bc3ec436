package fetch

import (
	"sort"
	"strings"
)

// Headers is a case-insensitive, multi-valued, ordered header store.
// Keys are normalized to lowercase; each key's values preserve append
// order. Get comma-joins every key's values, set-cookie included;
// set-cookie is the only key GetAll accepts and the only key Entries
// and ForEach emit once per value.
type Headers struct {
	order []string
	data  map[string][]string
}

// NewHeaders returns an empty Headers.
func NewHeaders() *Headers {
	return &Headers{data: map[string][]string{}}
}

// NewHeadersFromPairs builds a Headers from an ordered sequence of
// name/value tuples, aggregating any validation failures.
func NewHeadersFromPairs(pairs [][2]string) (*Headers, error) {
	h := NewHeaders()
	var errs error
	for _, kv := range pairs {
		if err := h.Append(kv[0], kv[1]); err != nil {
			errs = appendError(errs, err)
		}
	}
	if errs != nil {
		return nil, asTypeError("invalid header", errs)
	}
	return h, nil
}

// NewHeadersFromMap builds a Headers from a name -> single string value
// map, aggregating any validation failures.
func NewHeadersFromMap(m map[string]string) (*Headers, error) {
	h := NewHeaders()
	var errs error
	for k, v := range m {
		if err := h.Append(k, v); err != nil {
			errs = appendError(errs, err)
		}
	}
	if errs != nil {
		return nil, asTypeError("invalid header", errs)
	}
	return h, nil
}

// NewHeadersFromMultiMap builds a Headers from a name -> values map.
// set-cookie keeps each value as its own entry; every other
// name's sequence is joined by "," to form one appended value,
// matching the array-valued-object constructor form.
func NewHeadersFromMultiMap(m map[string][]string) (*Headers, error) {
	h := NewHeaders()
	var errs error
	for k, vs := range m {
		if normalizeName(k) == "set-cookie" {
			for _, v := range vs {
				if err := h.Append(k, v); err != nil {
					errs = appendError(errs, err)
				}
			}
			continue
		}
		if err := h.Append(k, strings.Join(vs, ",")); err != nil {
			errs = appendError(errs, err)
		}
	}
	if errs != nil {
		return nil, asTypeError("invalid header", errs)
	}
	return h, nil
}

// Clone returns an independent copy of h.
func (h *Headers) Clone() *Headers {
	if h == nil {
		return NewHeaders()
	}
	c := &Headers{
		order: append([]string(nil), h.order...),
		data:  make(map[string][]string, len(h.data)),
	}
	for k, v := range h.data {
		c.data[k] = append([]string(nil), v...)
	}
	return c
}

func normalizeName(name string) string {
	return strings.ToLower(name)
}

func validateHeaderName(name string) error {
	if name == "" {
		return typeError("invalid header name: empty")
	}
	for _, r := range name {
		if !isTokenRune(r) {
			return typeError("invalid header name: " + name)
		}
	}
	return nil
}

// isTokenRune reports whether r is a valid HTTP token character:
// visible ASCII minus separators, per RFC 7230 §3.2.6.
func isTokenRune(r rune) bool {
	if r <= 0x20 || r >= 0x7f {
		return false
	}
	switch r {
	case '(', ')', '<', '>', '@', ',', ';', ':', '\\', '"',
		'/', '[', ']', '?', '=', '{', '}':
		return false
	}
	return true
}

func validateHeaderValue(value string) error {
	for _, r := range value {
		if r == '\r' || r == '\n' || r == 0 {
			return typeError("invalid header value: contains CR, LF or NUL")
		}
	}
	return nil
}

// Append pushes value onto name's sequence, validating both and
// inserting the key at its first-insertion position if absent.
func (h *Headers) Append(name, value string) error {
	if err := validateHeaderName(name); err != nil {
		return err
	}
	if err := validateHeaderValue(value); err != nil {
		return err
	}
	key := normalizeName(name)
	if _, ok := h.data[key]; !ok {
		h.order = append(h.order, key)
	}
	h.data[key] = append(h.data[key], value)
	return nil
}

// Set validates and replaces name's sequence with [value].
func (h *Headers) Set(name, value string) error {
	if err := validateHeaderName(name); err != nil {
		return err
	}
	if err := validateHeaderValue(value); err != nil {
		return err
	}
	key := normalizeName(name)
	if _, ok := h.data[key]; !ok {
		h.order = append(h.order, key)
	}
	h.data[key] = []string{value}
	return nil
}

// Get returns the comma-joined value sequence for name, or ("", false) if absent.
func (h *Headers) Get(name string) (string, bool) {
	vs, ok := h.data[normalizeName(name)]
	if !ok {
		return "", false
	}
	return strings.Join(vs, ", "), true
}

// GetAll returns the raw value sequence for name. Only set-cookie is
// permitted; any other name fails with a type-error.
func (h *Headers) GetAll(name string) ([]string, error) {
	key := normalizeName(name)
	if key != "set-cookie" {
		return nil, typeError("getAll is only permitted for \"set-cookie\"")
	}
	return append([]string(nil), h.data[key]...), nil
}

// Has reports whether name is present.
func (h *Headers) Has(name string) bool {
	_, ok := h.data[normalizeName(name)]
	return ok
}

// Delete removes name.
func (h *Headers) Delete(name string) {
	key := normalizeName(name)
	if _, ok := h.data[key]; !ok {
		return
	}
	delete(h.data, key)
	for i, k := range h.order {
		if k == key {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Raw returns the full normalized-key -> value-sequence mapping, for
// internal consumers such as content negotiation and transfer framing.
func (h *Headers) Raw() map[string][]string {
	out := make(map[string][]string, len(h.data))
	for k, v := range h.data {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// KeyValue is one entry yielded by Entries: a normalized key and its
// comma-joined (or, for set-cookie, raw) value sequence.
type KeyValue struct {
	Key   string
	Value string
}

// Entries returns all header entries, keys sorted case-insensitively
// (they are already lowercase), each value comma-joined in append
// order — except set-cookie, whose entries are emitted one per value.
func (h *Headers) Entries() []KeyValue {
	keys := append([]string(nil), h.order...)
	sort.Strings(keys)
	var out []KeyValue
	for _, k := range keys {
		if k == "set-cookie" {
			for _, v := range h.data[k] {
				out = append(out, KeyValue{Key: k, Value: v})
			}
			continue
		}
		out = append(out, KeyValue{Key: k, Value: strings.Join(h.data[k], ", ")})
	}
	return out
}

// Keys returns the normalized header names in sorted order.
func (h *Headers) Keys() []string {
	keys := append([]string(nil), h.order...)
	sort.Strings(keys)
	return keys
}

// Values returns each key's comma-joined value sequence, in the same
// sorted-key order as Keys, completing the entries/keys/values/
// ForEach iteration surface.
func (h *Headers) Values() []string {
	keys := append([]string(nil), h.order...)
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = strings.Join(h.data[k], ", ")
	}
	return out
}

// ForEach visits every entry in sorted-key order.
func (h *Headers) ForEach(fn func(key, value string)) {
	for _, kv := range h.Entries() {
		fn(kv.Key, kv.Value)
	}
}
