package filter

import "errors"

// ErrComplex is returned by CNF when predicate cannot be distributed into
// conjunctive normal form within the bounded effort this implementation is
// willing to spend (distributing OR-over-AND can blow up exponentially).
// Callers must fall back to using predicate as-is, per §4.D phase 2.
var ErrComplex = errors.New("filter: too complex to convert to CNF")

// maxCNFClauses bounds the blow-up CNF distribution is allowed to produce
// before giving up and returning ErrComplex.
const maxCNFClauses = 256

// CNF converts f to an equivalent conjunction of clauses (each clause a
// disjunction of leaves), or returns ErrComplex if the distribution would
// exceed the implementation's effort bound.
func CNF(f Filter) (Filter, error) {
	clauses, err := toClauses(f)
	if err != nil {
		return nil, err
	}
	leaves := make([]Filter, len(clauses))
	for i, cl := range clauses {
		leaves[i] = Or2(cl...)
	}
	return And2(leaves...), nil
}

// toClauses returns f as a list of clauses, each clause a list of leaves
// disjoined together, such that the AND of (OR of each clause) is
// equivalent to f.
func toClauses(f Filter) ([][]Filter, error) {
	switch v := f.(type) {
	case And:
		var out [][]Filter
		for _, c := range v.Children {
			sub, err := toClauses(c)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	case Or:
		// Distribute: clauses(A) x clauses(B) x ... via cross product.
		product := [][]Filter{{}}
		for _, c := range v.Children {
			sub, err := toClauses(c)
			if err != nil {
				return nil, err
			}
			var next [][]Filter
			for _, p := range product {
				for _, s := range sub {
					combined := append(append([]Filter{}, p...), s...)
					next = append(next, combined)
					if len(next) > maxCNFClauses {
						return nil, ErrComplex
					}
				}
			}
			product = next
		}
		return product, nil
	default:
		return [][]Filter{{f}}, nil
	}
}
