// Package stakingconst contains constants shared by the Staking contract
// and its off-chain users.
package stakingconst

// Panic messages of the Staking contract.
const (
	ErrNonPositiveAmount   = "amount must be positive"
	ErrNothingStaked       = "nothing staked"
	ErrNotStaking          = "account is not staking"
	ErrNoRewards           = "no rewards to claim"
	ErrRateOutOfBounds     = "reward rate is out of bounds"
	ErrUnsupportedToken    = "only stake token can be accepted"
	ErrInvalidSender       = "invalid sender"
	ErrStakeTransferFailed = "failed to transfer stake"
	ErrInvalidAddress      = "invalid address"
	ErrInvalidRateBounds   = "invalid reward rate bounds"
	ErrSameTokens          = "stake and reward tokens must differ"
)

// Notification names of the Staking contract.
const (
	DepositEvent              = "Deposit"
	WithdrawEvent             = "Withdraw"
	RewardsClaimedEvent       = "RewardsClaimed"
	RewardsDistributedEvent   = "RewardsDistributed"
	RewardRateChangedEvent    = "RewardRateChanged"
	OwnershipTransferredEvent = "OwnershipTransferred"
)
