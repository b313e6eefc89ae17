// Package rewardconst contains constants shared by the Reward token contract
// and its off-chain users.
package rewardconst

// Panic messages of the Reward token contract.
const (
	// ErrNotMinter is thrown by Mint when it is called not by the minter.
	ErrNotMinter         = "only minter can mint tokens"
	ErrInvalidMinter     = "invalid minter address"
	ErrInvalidAddress    = "invalid address"
	ErrNonPositiveAmount = "amount must be positive"
	ErrNegativeAmount    = "negative amount"
)

// Token parameters.
const (
	Symbol   = "LPR"
	Decimals = 8
)
