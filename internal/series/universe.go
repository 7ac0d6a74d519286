package series

// ItemUniverse is an ordered set of item identifiers. Iteration order is the
// order in which items were first added, and it fixes the row order of every
// per-day emission so target and related files line up.
type ItemUniverse struct {
	order []string
	index map[string]int
}

// NewItemUniverse creates an empty universe.
func NewItemUniverse() *ItemUniverse {
	return &ItemUniverse{index: make(map[string]int)}
}

// Add inserts item if an item equal to it ignoring case is not present yet.
// It reports whether the item was new. The first-seen spelling is kept.
func (u *ItemUniverse) Add(item string) bool {
	key := itemKey(item)
	if _, ok := u.index[key]; ok {
		return false
	}
	u.index[key] = len(u.order)
	u.order = append(u.order, item)
	return true
}

// Contains reports whether item is in the universe, ignoring case.
func (u *ItemUniverse) Contains(item string) bool {
	_, ok := u.index[itemKey(item)]
	return ok
}

// Items returns a copy of the items in first-seen order.
func (u *ItemUniverse) Items() []string {
	out := make([]string, len(u.order))
	copy(out, u.order)
	return out
}

// Len returns the number of items.
func (u *ItemUniverse) Len() int {
	return len(u.order)
}
