package domain

// AssetID identifies one of the N tradable asset classes.
// Valid ids are [0, N) with N fixed at construction.
type AssetID int

// Account is a principal identifier: the owner, the shop itself, or any
// external buyer/seller. Accounts are opaque strings; the shop never creates
// them, it only moves balances between them.
type Account string

// InRange reports whether the id is a valid asset id for a shop of n classes.
func (id AssetID) InRange(n int) bool {
	return id >= 0 && int(id) < n
}
