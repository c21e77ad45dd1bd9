package http

// Header is a single name/value pair in serialization order.
type Header struct {
	Name  string
	Value string
}

// HeaderSet holds caller headers. Names are case sensitive and unique; setting
// an existing name replaces its value in place.
type HeaderSet struct {
	order  []string
	values map[string]string
}

func NewHeaderSet() *HeaderSet {
	return &HeaderSet{
		values: make(map[string]string),
	}
}

func (h *HeaderSet) Set(name, value string) {
	if _, ok := h.values[name]; !ok {
		h.order = append(h.order, name)
	}
	h.values[name] = value
}

// Get returns the value for name, or "" if it was never set.
func (h *HeaderSet) Get(name string) string {
	return h.values[name]
}

func (h *HeaderSet) Has(name string) bool {
	_, ok := h.values[name]
	return ok
}

func (h *HeaderSet) Remove(name string) {
	if _, ok := h.values[name]; !ok {
		return
	}
	delete(h.values, name)
	for i, n := range h.order {
		if n == name {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

func (h *HeaderSet) Clear() {
	h.order = nil
	h.values = make(map[string]string)
}

func (h *HeaderSet) Len() int {
	return len(h.order)
}

// Snapshot copies the headers in insertion order.
func (h *HeaderSet) Snapshot() []Header {
	out := make([]Header, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, Header{Name: name, Value: h.values[name]})
	}
	return out
}
