package scan

// KeyPage is one step of a key-space scan.
type KeyPage struct {
	Keys   []string
	Cursor Cursor
}

// KeyValue is one field/value pair of a hash scan.
type KeyValue struct {
	Key   string
	Value string
}

// MapPage is one step of a hash scan, in store order.
type MapPage struct {
	Entries []KeyValue
	Cursor  Cursor
}

// Map returns the entries as a map. Later duplicates overwrite earlier ones.
func (p MapPage) Map() map[string]string {
	m := make(map[string]string, len(p.Entries))
	for _, kv := range p.Entries {
		m[kv.Key] = kv.Value
	}
	return m
}

// StreamPage is one step of a streaming scan: the number of elements
// delivered to the sink and the cursor to continue from.
type StreamPage struct {
	Count  int64
	Cursor Cursor
}
