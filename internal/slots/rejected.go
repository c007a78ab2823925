package slots

import "sort"

// RejectedSet holds the labels rejected during one ordering session.
// The zero value is usable for reads; a nil set contains nothing.
type RejectedSet map[string]struct{}

func (s RejectedSet) Has(label string) bool {
	_, ok := s[label]
	return ok
}

func (s RejectedSet) Add(label string) {
	s[label] = struct{}{}
}

// Labels returns the members in sorted order.
func (s RejectedSet) Labels() []string {
	out := make([]string, 0, len(s))
	for label := range s {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

func (s RejectedSet) Clone() RejectedSet {
	out := make(RejectedSet, len(s))
	for label := range s {
		out[label] = struct{}{}
	}
	return out
}
