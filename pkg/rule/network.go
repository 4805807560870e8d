package rule

// Network is a bidirectional index over a fixed set of rules: entity to
// rules, and entity-pair to rules. Callers construct one explicitly and
// pass it by reference to the scheduler and checker; rules do not
// self-register into any global state.
type Network struct {
	rules    []*Rule
	byEntity map[Entity][]*Rule
	byPair   map[pairKey][]*Rule
}

type pairKey struct {
	a, b Entity
}

func makePairKey(a, b Entity) pairKey {
	// Order-independent: always key by the lexicographically smaller of
	// (Kind, ID) first so RulesBetween(a,b) == RulesBetween(b,a).
	if a.Kind > b.Kind || (a.Kind == b.Kind && a.ID > b.ID) {
		a, b = b, a
	}
	return pairKey{a, b}
}

// NewNetwork indexes the given rules. Lookups on entities or pairs not
// covered by any rule simply return empty sets — the network never fails.
func NewNetwork(rules []*Rule) *Network {
	n := &Network{
		rules:    rules,
		byEntity: make(map[Entity][]*Rule),
		byPair:   make(map[pairKey][]*Rule),
	}
	for _, r := range rules {
		n.byEntity[r.A] = append(n.byEntity[r.A], r)
		n.byEntity[r.B] = append(n.byEntity[r.B], r)
		key := makePairKey(r.A, r.B)
		n.byPair[key] = append(n.byPair[key], r)
	}
	return n
}

// RulesOf returns every rule in which entity participates.
func (n *Network) RulesOf(e Entity) []*Rule {
	return n.byEntity[e]
}

// RulesBetween returns every rule directly relating a and b.
func (n *Network) RulesBetween(a, b Entity) []*Rule {
	return n.byPair[makePairKey(a, b)]
}

// Filter returns the subset of rules matching weight and kind.
func Filter(rules []*Rule, weight Weight, kind Kind) []*Rule {
	var out []*Rule
	for _, r := range rules {
		if r.Weight == weight && r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// ExistsMustForbidden reports whether a MUST-weight FORBIDDEN rule of any
// subtype relates a and b.
func (n *Network) ExistsMustForbidden(a, b Entity) bool {
	return n.Exists(a, b, MUST, Forbidden)
}

// Exists reports whether a rule of the given weight and kind relates a
// and b.
func (n *Network) Exists(a, b Entity, weight Weight, kind Kind) bool {
	for _, r := range n.byPair[makePairKey(a, b)] {
		if r.Weight == weight && r.Kind == kind {
			return true
		}
	}
	return false
}

// FinePriority is the tie-break the planning queue uses for duty
// entanglement: the number of rules touching e. Duties wired into more
// rules are harder to place and should be attempted earlier.
func (n *Network) FinePriority(e Entity) int {
	return len(n.byEntity[e])
}

// All returns every rule in the network, in registration order.
func (n *Network) All() []*Rule {
	return n.rules
}

// OfSubtype returns every rule in the network with the given subtype, in
// registration order.
func (n *Network) OfSubtype(s Subtype) []*Rule {
	var out []*Rule
	for _, r := range n.rules {
		if r.Subtype == s {
			out = append(out, r)
		}
	}
	return out
}
