package models

// Quote maps an asset symbol to its latest price. Immutable once fetched;
// producers hand out fresh maps, never mutate a published one.
type Quote map[string]float64

// Seed returns a zero-valued quote for the given symbols. Used as the
// initial last-known state before the first successful fetch.
func Seed(symbols []string) Quote {
	q := make(Quote, len(symbols))
	for _, s := range symbols {
		q[s] = 0
	}
	return q
}

// Clone returns an independent copy of the quote.
func (q Quote) Clone() Quote {
	out := make(Quote, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}

// IsZero reports whether the quote carries no usable data: either empty or
// every price still at the seeded zero value. A market where every tracked
// price is legitimately 0.0 would be misclassified here; this mirrors the
// upstream contract and is intentional.
func (q Quote) IsZero() bool {
	if len(q) == 0 {
		return true
	}
	for _, v := range q {
		if v != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether two quotes hold exactly the same symbol set and prices.
func (q Quote) Equal(other Quote) bool {
	if len(q) != len(other) {
		return false
	}
	for k, v := range q {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
