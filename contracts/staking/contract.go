package staking

import (
	"github.com/nspcc-dev/lp-staking-contract/common"
	"github.com/nspcc-dev/lp-staking-contract/contracts/staking/stakingconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/ledger"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Account structure stores staking state of each participant.
type Account struct {
	// Amount of stake tokens held by the contract on behalf of the account.
	Staked int
	// Block height of the last reward settlement.
	Checkpoint int
	// Settled but not yet claimed reward.
	Pending int
	// Set on the first deposit and never reset.
	HasStaked bool
	// Set on deposit, reset on withdrawal.
	IsStaking bool
}

const (
	accPrefix         = 'a'
	participantPrefix = 'p'

	ownerKey         = "owner"
	stakeTokenKey    = "stakeToken"
	rewardTokenKey   = "rewardToken"
	totalStakedKey   = "totalStaked"
	rewardRateKey    = "rewardRate"
	minRewardRateKey = "minRewardRate"
	maxRewardRateKey = "maxRewardRate"
	participantsKey  = "numParticipants"
)

// nolint:unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()
	if isUpdate {
		args := data.([]any)
		version := args[len(args)-1].(int)

		common.CheckVersion(version)
		return
	}

	args := data.(struct {
		owner       interop.Hash160
		stakeToken  interop.Hash160
		rewardToken interop.Hash160
		rate        int
		minRate     int
		maxRate     int
	})

	if len(args.owner) != interop.Hash160Len ||
		len(args.stakeToken) != interop.Hash160Len ||
		len(args.rewardToken) != interop.Hash160Len {
		panic(stakingconst.ErrInvalidAddress)
	}

	if args.stakeToken.Equals(args.rewardToken) {
		panic(stakingconst.ErrSameTokens)
	}

	if args.minRate < 0 || args.minRate > args.maxRate {
		panic(stakingconst.ErrInvalidRateBounds)
	}

	if args.rate < args.minRate || args.rate > args.maxRate {
		panic(stakingconst.ErrRateOutOfBounds)
	}

	storage.Put(ctx, ownerKey, args.owner)
	storage.Put(ctx, stakeTokenKey, args.stakeToken)
	storage.Put(ctx, rewardTokenKey, args.rewardToken)
	storage.Put(ctx, rewardRateKey, args.rate)
	storage.Put(ctx, minRewardRateKey, args.minRate)
	storage.Put(ctx, maxRewardRateKey, args.maxRate)

	runtime.Log("staking contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	common.CheckCommitteeWitness()

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("staking contract updated")
}

// OnNEP17Payment is a callback of the stake token. Every received transfer
// is credited to the sender as a deposit. Transfers of other tokens and
// mints (transfers without a sender) are rejected.
//
// It produces Deposit notification.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	ctx := storage.GetContext()

	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(common.GetHash160(ctx, stakeTokenKey)) {
		panic(stakingconst.ErrUnsupportedToken)
	}

	if len(from) != interop.Hash160Len {
		panic(stakingconst.ErrInvalidSender)
	}

	if amount <= 0 {
		panic(stakingconst.ErrNonPositiveAmount)
	}

	deposit(ctx, from, amount)
}

// Deposit transfers amount of stake tokens from the account to the contract
// and adds them to the account stake. Reward accrued by the previous stake is
// settled first. It can be invoked only by the account owner.
//
// Stake token checks the account witness when called by this contract, so
// the account must sign with a scope covering the stake token, e.g.
// CalledByEntry together with CustomContracts including the stake token.
// With CalledByEntry only, Deposit fails with ErrStakeTransferFailed; a plain
// stake token transfer to the contract needs no extra scope.
//
// It produces Deposit notification.
func Deposit(from interop.Hash160, amount int) {
	if len(from) != interop.Hash160Len {
		panic(stakingconst.ErrInvalidAddress)
	}

	if amount <= 0 {
		panic(stakingconst.ErrNonPositiveAmount)
	}

	common.CheckAccountWitness(from)

	ctx := storage.GetReadOnlyContext()
	stakeToken := common.GetHash160(ctx, stakeTokenKey)

	// accounting is done by OnNEP17Payment called back by the stake token
	ok := contract.Call(stakeToken, "transfer", contract.All,
		from, runtime.GetExecutingScriptHash(), amount, nil).(bool)
	if !ok {
		panic(stakingconst.ErrStakeTransferFailed)
	}
}

// Withdraw settles accrued reward and returns the whole stake of the account.
// Settled reward stays claimable. It can be invoked only by the account owner.
//
// It produces Withdraw notification.
func Withdraw(account interop.Hash160) {
	if len(account) != interop.Hash160Len {
		panic(stakingconst.ErrInvalidAddress)
	}

	common.CheckAccountWitness(account)

	ctx := storage.GetContext()

	acc := getAccount(ctx, account)
	if acc.Staked <= 0 {
		panic(stakingconst.ErrNothingStaked)
	}

	if !acc.IsStaking {
		panic(stakingconst.ErrNotStaking)
	}

	total := common.GetInt(ctx, totalStakedKey)
	acc = settle(acc, ledger.CurrentIndex(), common.GetInt(ctx, rewardRateKey), total)

	amount := acc.Staked
	acc.Staked = 0
	acc.IsStaking = false

	putAccount(ctx, account, acc)
	storage.Put(ctx, totalStakedKey, total-amount)

	stakeToken := common.GetHash160(ctx, stakeTokenKey)
	ok := contract.Call(stakeToken, "transfer", contract.All,
		runtime.GetExecutingScriptHash(), account, amount, nil).(bool)
	if !ok {
		panic(stakingconst.ErrStakeTransferFailed)
	}

	runtime.Notify("Withdraw", account, amount)
}

// ClaimRewards settles accrued reward and mints all pending reward tokens to
// the account. It can be invoked only by the account owner.
//
// It produces RewardsClaimed notification.
func ClaimRewards(account interop.Hash160) {
	if len(account) != interop.Hash160Len {
		panic(stakingconst.ErrInvalidAddress)
	}

	common.CheckAccountWitness(account)

	ctx := storage.GetContext()

	acc := getAccount(ctx, account)
	acc = settle(acc, ledger.CurrentIndex(),
		common.GetInt(ctx, rewardRateKey), common.GetInt(ctx, totalStakedKey))

	amount := acc.Pending
	if amount <= 0 {
		panic(stakingconst.ErrNoRewards)
	}

	acc.Pending = 0
	putAccount(ctx, account, acc)

	rewardToken := common.GetHash160(ctx, rewardTokenKey)
	contract.Call(rewardToken, "mint", contract.All, account, amount)

	runtime.Notify("RewardsClaimed", account, amount)
}

// DistributeRewardsAll settles accrued reward of every staking participant.
// No tokens are transferred. It can be invoked only by the contract owner.
//
// It produces RewardsDistributed notification.
func DistributeRewardsAll() {
	ctx := storage.GetContext()

	owner := common.GetHash160(ctx, ownerKey)
	common.CheckOwnerWitness(owner)

	var (
		now   = ledger.CurrentIndex()
		rate  = common.GetInt(ctx, rewardRateKey)
		total = common.GetInt(ctx, totalStakedKey)
	)

	it := storage.Find(ctx, []byte{participantPrefix}, storage.KeysOnly|storage.RemovePrefix)
	for iterator.Next(it) {
		addr := iterator.Value(it).(interop.Hash160) // it MUST BE `storage.KeysOnly`
		if len(addr) != interop.Hash160Len {
			continue
		}

		acc := getAccount(ctx, addr)
		if !acc.IsStaking {
			continue
		}

		putAccount(ctx, addr, settle(acc, now, rate, total))
	}

	runtime.Notify("RewardsDistributed", owner)
}

// SetRewardRate changes total amount of reward minted per block. New rate
// must be within bounds set on deploy. Unsettled periods are accounted with
// the new rate, call DistributeRewardsAll in the same transaction to settle
// them with the old one. It can be invoked only by the contract owner.
//
// It produces RewardRateChanged notification.
func SetRewardRate(rate int) {
	ctx := storage.GetContext()

	common.CheckOwnerWitness(common.GetHash160(ctx, ownerKey))

	if rate < common.GetInt(ctx, minRewardRateKey) || rate > common.GetInt(ctx, maxRewardRateKey) {
		panic(stakingconst.ErrRateOutOfBounds)
	}

	old := common.GetInt(ctx, rewardRateKey)
	storage.Put(ctx, rewardRateKey, rate)

	runtime.Notify("RewardRateChanged", old, rate)
}

// TransferOwnership sets new contract owner. It can be invoked only by the
// current owner.
//
// It produces OwnershipTransferred notification.
func TransferOwnership(newOwner interop.Hash160) {
	if len(newOwner) != interop.Hash160Len {
		panic(stakingconst.ErrInvalidAddress)
	}

	ctx := storage.GetContext()

	owner := common.GetHash160(ctx, ownerKey)
	common.CheckOwnerWitness(owner)

	storage.Put(ctx, ownerKey, newOwner)

	runtime.Notify("OwnershipTransferred", owner, newOwner)
}

// Owner returns address of the contract owner.
func Owner() interop.Hash160 {
	return common.GetHash160(storage.GetReadOnlyContext(), ownerKey)
}

// StakeToken returns address of the accepted stake token.
func StakeToken() interop.Hash160 {
	return common.GetHash160(storage.GetReadOnlyContext(), stakeTokenKey)
}

// RewardToken returns address of the reward token.
func RewardToken() interop.Hash160 {
	return common.GetHash160(storage.GetReadOnlyContext(), rewardTokenKey)
}

// TotalStaked returns sum of all staked amounts.
func TotalStaked() int {
	return common.GetInt(storage.GetReadOnlyContext(), totalStakedKey)
}

// RewardRate returns total amount of reward minted per block.
func RewardRate() int {
	return common.GetInt(storage.GetReadOnlyContext(), rewardRateKey)
}

// MinRewardRate returns lower bound of the reward rate.
func MinRewardRate() int {
	return common.GetInt(storage.GetReadOnlyContext(), minRewardRateKey)
}

// MaxRewardRate returns upper bound of the reward rate.
func MaxRewardRate() int {
	return common.GetInt(storage.GetReadOnlyContext(), maxRewardRateKey)
}

// GetAccount returns stored staking state of the account. Reward accrued
// since the last checkpoint is not included, see PendingRewards.
func GetAccount(account interop.Hash160) Account {
	return getAccount(storage.GetReadOnlyContext(), account)
}

// StakedOf returns amount staked by the account.
func StakedOf(account interop.Hash160) int {
	return getAccount(storage.GetReadOnlyContext(), account).Staked
}

// IsStaking returns true if the account has non-withdrawn stake.
func IsStaking(account interop.Hash160) bool {
	return getAccount(storage.GetReadOnlyContext(), account).IsStaking
}

// HasStaked returns true if the account has ever deposited.
func HasStaked(account interop.Hash160) bool {
	return getAccount(storage.GetReadOnlyContext(), account).HasStaked
}

// PendingRewards returns amount of reward the account would get if it
// claimed in the current block.
func PendingRewards(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()

	acc := getAccount(ctx, account)
	acc = settle(acc, ledger.CurrentIndex(),
		common.GetInt(ctx, rewardRateKey), common.GetInt(ctx, totalStakedKey))

	return acc.Pending
}

// ParticipantsCount returns number of accounts that have ever staked.
func ParticipantsCount() int {
	return common.GetInt(storage.GetReadOnlyContext(), participantsKey)
}

// ListParticipants returns iterator over addresses of all accounts that have
// ever staked.
func ListParticipants() iterator.Iterator {
	return storage.Find(storage.GetReadOnlyContext(), []byte{participantPrefix},
		storage.KeysOnly|storage.RemovePrefix)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// settle credits reward accrued since the account checkpoint and moves the
// checkpoint to now. Checkpoint is moved even if nothing is staked so that
// idle periods are never rewarded later.
func settle(acc Account, now, rate, total int) Account {
	if total > 0 && now > acc.Checkpoint {
		acc.Pending += rate * (now - acc.Checkpoint) * acc.Staked / total
	}

	acc.Checkpoint = now

	return acc
}

func deposit(ctx storage.Context, from interop.Hash160, amount int) {
	var (
		acc   = getAccount(ctx, from)
		total = common.GetInt(ctx, totalStakedKey)
		now   = ledger.CurrentIndex()
	)

	if acc.IsStaking {
		acc = settle(acc, now, common.GetInt(ctx, rewardRateKey), total)
	}

	acc.Staked += amount
	total += amount

	if !acc.HasStaked {
		acc.HasStaked = true
		addParticipant(ctx, from)
	}

	acc.IsStaking = true
	acc.Checkpoint = now

	putAccount(ctx, from, acc)
	storage.Put(ctx, totalStakedKey, total)

	runtime.Notify("Deposit", from, amount)
}

func addParticipant(ctx storage.Context, addr interop.Hash160) {
	n := common.GetInt(ctx, participantsKey)
	storage.Put(ctx, append([]byte{participantPrefix}, addr...), n)
	storage.Put(ctx, participantsKey, n+1)
}

func getAccount(ctx storage.Context, key interop.Hash160) Account {
	data := storage.Get(ctx, append([]byte{accPrefix}, key...))
	if data != nil {
		return std.Deserialize(data.([]byte)).(Account)
	}

	return Account{}
}

func putAccount(ctx storage.Context, key interop.Hash160, acc Account) {
	common.SetSerialized(ctx, append([]byte{accPrefix}, key...), acc)
}
