package models

// Position is an NFL player position as it appears in the ranking pool.
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDST Position = "DST"
)

// SlotKind is a roster slot category. Fixed kinds accept exactly their
// matching position; flexible kinds accept a set of positions.
type SlotKind string

const (
	SlotQB        SlotKind = "qb"
	SlotRB        SlotKind = "rb"
	SlotWR        SlotKind = "wr"
	SlotTE        SlotKind = "te"
	SlotK         SlotKind = "k"
	SlotDST       SlotKind = "dst"
	SlotFlex      SlotKind = "flex"      // RB/WR/TE
	SlotSuperflex SlotKind = "superflex" // QB/RB/WR/TE
	SlotBench     SlotKind = "bench"     // any position
)

// flexEligibility maps flexible slot kinds to the positions they accept.
// Fixed kinds are resolved by direct position match instead.
var flexEligibility = map[SlotKind][]Position{
	SlotFlex:      {PositionRB, PositionWR, PositionTE},
	SlotSuperflex: {PositionQB, PositionRB, PositionWR, PositionTE},
	SlotBench:     {PositionQB, PositionRB, PositionWR, PositionTE, PositionK, PositionDST},
}

// directSlot maps each position to its fixed roster slot kind.
var directSlot = map[Position]SlotKind{
	PositionQB:  SlotQB,
	PositionRB:  SlotRB,
	PositionWR:  SlotWR,
	PositionTE:  SlotTE,
	PositionK:   SlotK,
	PositionDST: SlotDST,
}

// Flexible reports whether the slot kind accepts more than one position.
func (k SlotKind) Flexible() bool {
	_, ok := flexEligibility[k]
	return ok
}

// Accepts reports whether a player at pos can count against this slot kind.
func (k SlotKind) Accepts(pos Position) bool {
	if direct, ok := directSlot[pos]; ok && direct == k {
		return true
	}
	for _, p := range flexEligibility[k] {
		if p == pos {
			return true
		}
	}
	return false
}

// SlotRule declares how many slots of one kind a roster requires.
type SlotRule struct {
	Kind  SlotKind `json:"kind" yaml:"kind"`
	Count int      `json:"count" yaml:"count"`
}

// RosterRules is the ordered roster-requirement configuration for a session.
// Order matters: when a drafted position has no fixed slot configured, the
// first flexible rule that accepts the position wins. Keeping the preference
// in configuration order makes the tie-break deterministic instead of
// depending on map iteration.
type RosterRules []SlotRule

// Count returns the required count for a slot kind, or 0 when not configured.
func (r RosterRules) Count(kind SlotKind) int {
	for _, rule := range r {
		if rule.Kind == kind {
			return rule.Count
		}
	}
	return 0
}

// Has reports whether the rules configure the given slot kind at all.
func (r RosterRules) Has(kind SlotKind) bool {
	for _, rule := range r {
		if rule.Kind == kind {
			return true
		}
	}
	return false
}

// TotalSlots is the aggregate roster size, which is also the number of draft
// rounds: every slot, bench included, is filled by exactly one pick.
func (r RosterRules) TotalSlots() int {
	total := 0
	for _, rule := range r {
		total += rule.Count
	}
	return total
}

// SlotForPosition resolves which configured slot a drafted player counts
// against: the position's fixed slot when configured, otherwise the first
// configured flexible slot that accepts the position.
func (r RosterRules) SlotForPosition(pos Position) (SlotKind, bool) {
	if direct, ok := directSlot[pos]; ok && r.Has(direct) {
		return direct, true
	}
	for _, rule := range r {
		if rule.Kind.Flexible() && rule.Kind.Accepts(pos) {
			return rule.Kind, true
		}
	}
	return "", false
}

// EmptyRoster returns a zeroed roster counter covering every configured slot.
func (r RosterRules) EmptyRoster() map[SlotKind]int {
	roster := make(map[SlotKind]int, len(r))
	for _, rule := range r {
		roster[rule.Kind] = 0
	}
	return roster
}

// DefaultRosterRules is a standard 12-round lineup configuration.
func DefaultRosterRules() RosterRules {
	return RosterRules{
		{Kind: SlotQB, Count: 1},
		{Kind: SlotRB, Count: 2},
		{Kind: SlotWR, Count: 2},
		{Kind: SlotTE, Count: 1},
		{Kind: SlotFlex, Count: 1},
		{Kind: SlotK, Count: 1},
		{Kind: SlotDST, Count: 1},
		{Kind: SlotBench, Count: 3},
	}
}
