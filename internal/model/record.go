package model

// RawRecord is one unnormalized feed item: field name → string value,
// keyed by whatever the source calls its columns. Key order is the
// encounter order in the feed, which matters for specification pairs.
type RawRecord struct {
	keys   []string
	fields map[string]string
}

func NewRawRecord() RawRecord {
	return RawRecord{fields: make(map[string]string)}
}

// Set stores a value. Empty values are kept out so that Get reports
// absent fields as absent rather than as "".
func (r *RawRecord) Set(key, value string) {
	if value == "" {
		return
	}
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = value
}

// Get tries the given field names in order and returns the first
// present value. This is where the "try several column names" policy
// of heterogeneous feeds lives.
func (r RawRecord) Get(names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := r.fields[n]; ok {
			return v, true
		}
	}
	return "", false
}

func (r RawRecord) GetDefault(def string, names ...string) string {
	if v, ok := r.Get(names...); ok {
		return v
	}
	return def
}

// Keys returns the field names in feed encounter order.
func (r RawRecord) Keys() []string {
	return r.keys
}

func (r RawRecord) Len() int {
	return len(r.fields)
}
