package domain

// AssetLedger is the multi-asset balance and transfer/approval authority the
// engine settles against. The shop is just another holder to it.
type AssetLedger interface {
	BalanceOf(holder Account, id AssetID) int64
	BalanceOfBatch(holders []Account, ids []AssetID) []int64
	IsApprovedForAll(owner, operator Account) bool
	SetApprovalForAll(owner, operator Account, approved bool)
	// Transfer moves amount of id from `from` to `to`. The operator must be
	// `from` itself or an approved operator for `from`.
	Transfer(operator, from, to Account, id AssetID, amount int64) error
	TransferBatch(operator, from, to Account, ids []AssetID, amounts []int64) error
	Mint(to Account, id AssetID, amount int64) error
	MintBatch(to Account, ids []AssetID, amounts []int64) error
	Burn(from Account, id AssetID, amount int64) error
	BurnBatch(from Account, ids []AssetID, amounts []int64) error
	URI(id AssetID) string
}

// NativeLedger tracks native-currency holdings for every principal. Payments,
// payouts and withdrawals are plain transfers between accounts.
type NativeLedger interface {
	BalanceOf(holder Account) int64
	Deposit(holder Account, amount int64)
	Transfer(from, to Account, amount int64) error
}
