package tests

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/nspcc-dev/lp-staking-contract/common"
	"github.com/nspcc-dev/lp-staking-contract/contracts/reward/rewardconst"
	"github.com/nspcc-dev/lp-staking-contract/contracts/staking/stakingconst"
	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const rateE18 = int64(1_000_000_000_000_000_000)

func TestStakingGeneric(t *testing.T) {
	s := newStakingEnv(t, 10, 1, 100)

	s.staking.Invoke(t, s.e.CommitteeHash.BytesBE(), "owner")
	s.staking.Invoke(t, s.gas.Hash.BytesBE(), "stakeToken")
	s.staking.Invoke(t, s.reward.Hash.BytesBE(), "rewardToken")
	s.staking.Invoke(t, 10, "rewardRate")
	s.staking.Invoke(t, 1, "minRewardRate")
	s.staking.Invoke(t, 100, "maxRewardRate")
	s.staking.Invoke(t, 0, "totalStaked")
	s.staking.Invoke(t, 0, "participantsCount")
	s.staking.Invoke(t, common.Version, "version")

	s.reward.Invoke(t, s.staking.Hash.BytesBE(), "minter")

	t.Run("unknown account", func(t *testing.T) {
		h := util.Uint160{1, 2, 3}

		a := s.getAccount(t, h)
		require.Zero(t, a.staked.Sign())
		require.Zero(t, a.checkpoint.Sign())
		require.Zero(t, a.pending.Sign())
		require.False(t, a.hasStaked)
		require.False(t, a.isStaking)

		s.staking.Invoke(t, 0, "pendingRewards", h)
	})

	t.Run("update", func(t *testing.T) {
		acc := s.e.NewAccount(t)
		s.as(acc).InvokeFail(t, common.ErrCommitteeWitnessFailed, "update", []byte{}, []byte{}, nil)
	})
}

func TestStakingDeployValidation(t *testing.T) {
	e := newExecutor(t)

	ctrStaking := neotest.CompileFile(t, e.CommitteeHash, stakingPath, stakingPath+"/config.yml")
	gasHash, err := e.Chain.GetNativeContractScriptHash(nativenames.Gas)
	require.NoError(t, err)
	rewardHash := util.Uint160{1, 2, 3}

	t.Run("rate out of bounds", func(t *testing.T) {
		e.DeployContractCheckFAULT(t, ctrStaking,
			[]any{e.CommitteeHash, gasHash, rewardHash, int64(101), int64(1), int64(100)},
			stakingconst.ErrRateOutOfBounds)
	})
	t.Run("inverted bounds", func(t *testing.T) {
		e.DeployContractCheckFAULT(t, ctrStaking,
			[]any{e.CommitteeHash, gasHash, rewardHash, int64(5), int64(10), int64(1)},
			stakingconst.ErrInvalidRateBounds)
	})
	t.Run("negative bounds", func(t *testing.T) {
		e.DeployContractCheckFAULT(t, ctrStaking,
			[]any{e.CommitteeHash, gasHash, rewardHash, int64(-1), int64(-1), int64(1)},
			stakingconst.ErrInvalidRateBounds)
	})
	t.Run("same tokens", func(t *testing.T) {
		e.DeployContractCheckFAULT(t, ctrStaking,
			[]any{e.CommitteeHash, gasHash, gasHash, int64(5), int64(5), int64(5)},
			stakingconst.ErrSameTokens)
	})
	t.Run("invalid owner", func(t *testing.T) {
		e.DeployContractCheckFAULT(t, ctrStaking,
			[]any{[]byte{1, 2, 3}, gasHash, rewardHash, int64(5), int64(5), int64(5)},
			stakingconst.ErrInvalidAddress)
	})
}

func TestStakingDeposit(t *testing.T) {
	s := newStakingEnv(t, 10, 10, 10)

	acc := s.e.NewAccount(t)
	cAcc := s.as(acc)
	h := acc.ScriptHash()

	t.Run("invalid amount", func(t *testing.T) {
		cAcc.InvokeFail(t, stakingconst.ErrNonPositiveAmount, "deposit", h, 0)
		cAcc.InvokeFail(t, stakingconst.ErrNonPositiveAmount, "deposit", h, -1)
	})

	t.Run("invalid address", func(t *testing.T) {
		cAcc.InvokeFail(t, stakingconst.ErrInvalidAddress, "deposit", []byte{1, 2, 3}, 100)
	})

	t.Run("missing witness", func(t *testing.T) {
		other := s.e.NewAccount(t)
		s.as(other).InvokeFail(t, common.ErrAccountWitnessFailed, "deposit", h, 100)
	})

	t.Run("insufficient stake balance", func(t *testing.T) {
		cAcc.InvokeFail(t, stakingconst.ErrStakeTransferFailed, "deposit", h, int64(1_000_000_0000_0000))

		a := s.getAccount(t, h)
		require.Zero(t, a.staked.Sign())
		require.Zero(t, a.checkpoint.Sign())
		require.False(t, a.hasStaked)
		require.False(t, a.isStaking)

		require.Zero(t, s.totalStaked(t).Sign())
		require.Zero(t, s.custodyBalance(t).Sign())
		require.Zero(t, s.readInt(t, s.staking, "participantsCount").Sign())
	})

	txH := cAcc.Invoke(t, stackitem.Null{}, "deposit", h, 100)
	aer := cAcc.CheckHalt(t, txH)

	deposits := eventsByName(aer, s.staking.Hash, stakingconst.DepositEvent)
	require.Len(t, deposits, 1)
	require.Equal(t, []stackitem.Item{
		stackitem.NewByteArray(h.BytesBE()),
		stackitem.Make(100),
	}, deposits[0])

	a := s.getAccount(t, h)
	require.EqualValues(t, 100, a.staked.Int64())
	require.Zero(t, a.pending.Sign())
	require.True(t, a.hasStaked)
	require.True(t, a.isStaking)

	require.EqualValues(t, 100, s.totalStaked(t).Int64())
	require.EqualValues(t, 100, s.custodyBalance(t).Int64())

	cAcc.Invoke(t, true, "isStaking", h)
	cAcc.Invoke(t, true, "hasStaked", h)
	cAcc.Invoke(t, 100, "stakedOf", h)
	cAcc.Invoke(t, 1, "participantsCount")

	// 4 blocks are added by the invocations above
	s.skipBlocks(t, 1)
	cAcc.Invoke(t, stackitem.Null{}, "deposit", h, 50)

	b := s.getAccount(t, h)
	elapsed := new(big.Int).Sub(b.checkpoint, a.checkpoint)
	require.EqualValues(t, 6, elapsed.Int64())
	require.Equal(t, new(big.Int).Mul(big.NewInt(10), elapsed), b.pending)
	require.EqualValues(t, 150, b.staked.Int64())
	require.EqualValues(t, 150, s.totalStaked(t).Int64())
	require.EqualValues(t, 150, s.custodyBalance(t).Int64())

	cAcc.Invoke(t, 1, "participantsCount")
}

func TestStakingDepositByTransfer(t *testing.T) {
	s := newStakingEnv(t, 10, 10, 10)

	acc := s.e.NewAccount(t)
	h := acc.ScriptHash()

	s.gas.WithSigners(acc).Invoke(t, true, "transfer", h, s.staking.Hash, 70, nil)

	a := s.getAccount(t, h)
	require.EqualValues(t, 70, a.staked.Int64())
	require.True(t, a.isStaking)
	require.EqualValues(t, 70, s.totalStaked(t).Int64())
	require.EqualValues(t, 70, s.custodyBalance(t).Int64())

	t.Run("other token", func(t *testing.T) {
		neoHash, err := s.e.Chain.GetNativeContractScriptHash(nativenames.Neo)
		require.NoError(t, err)

		neoInv := s.e.CommitteeInvoker(neoHash)
		neoInv.InvokeFail(t, stakingconst.ErrUnsupportedToken, "transfer",
			s.e.CommitteeHash, s.staking.Hash, 1, nil)
	})
}

func TestStakingDepositWitnessScope(t *testing.T) {
	s := newStakingEnv(t, 10, 10, 10)

	acc := s.e.NewAccount(t)
	h := acc.ScriptHash()

	t.Run("called by entry", func(t *testing.T) {
		// stake token checks the witness when called by Staking contract
		txH := s.invokeScoped(t, acc, transaction.CalledByEntry, nil, s.stakingCall("deposit", h, 100))
		s.e.CheckFault(t, txH, stakingconst.ErrStakeTransferFailed)

		require.False(t, s.getAccount(t, h).hasStaked)
		require.Zero(t, s.totalStaked(t).Sign())
		require.Zero(t, s.custodyBalance(t).Sign())
	})

	txH := s.invokeScoped(t, acc, transaction.CalledByEntry|transaction.CustomContracts,
		[]util.Uint160{s.gas.Hash}, s.stakingCall("deposit", h, 100))
	s.e.CheckHalt(t, txH)

	a := s.getAccount(t, h)
	require.EqualValues(t, 100, a.staked.Int64())
	require.True(t, a.isStaking)

	t.Run("transfer", func(t *testing.T) {
		txH := s.invokeScoped(t, acc, transaction.CalledByEntry, nil,
			call{hash: s.gas.Hash, method: "transfer", args: []any{h, s.staking.Hash, 50, nil}})
		s.e.CheckHalt(t, txH)

		require.EqualValues(t, 150, s.getAccount(t, h).staked.Int64())
		require.EqualValues(t, 150, s.totalStaked(t).Int64())
		require.EqualValues(t, 150, s.custodyBalance(t).Int64())
	})
}

// Single staker deposits 100 at t=0 and withdraws at t=10 with rate 1e18.
func TestStakingWithdraw(t *testing.T) {
	s := newStakingEnv(t, rateE18, rateE18, rateE18)

	acc := s.e.NewAccount(t)
	cAcc := s.as(acc)
	h := acc.ScriptHash()

	t.Run("nothing staked", func(t *testing.T) {
		cAcc.InvokeFail(t, stakingconst.ErrNothingStaked, "withdraw", h)
		require.False(t, s.getAccount(t, h).hasStaked)
	})

	cAcc.Invoke(t, stackitem.Null{}, "deposit", h, 100)
	a := s.getAccount(t, h)

	t.Run("missing witness", func(t *testing.T) {
		other := s.e.NewAccount(t)
		s.as(other).InvokeFail(t, common.ErrAccountWitnessFailed, "withdraw", h)
	})

	// account creation and failed withdrawal have added 2 blocks
	s.skipBlocks(t, 7)

	txH := cAcc.Invoke(t, stackitem.Null{}, "withdraw", h)
	aer := cAcc.CheckHalt(t, txH)

	withdrawals := eventsByName(aer, s.staking.Hash, stakingconst.WithdrawEvent)
	require.Len(t, withdrawals, 1)
	require.Equal(t, []stackitem.Item{
		stackitem.NewByteArray(h.BytesBE()),
		stackitem.Make(100),
	}, withdrawals[0])

	b := s.getAccount(t, h)
	require.EqualValues(t, 10, new(big.Int).Sub(b.checkpoint, a.checkpoint).Int64())
	require.Equal(t, bigMul(rateE18, 10), b.pending) // 1e18 * 10 * 100 / 100
	require.Zero(t, b.staked.Sign())
	require.False(t, b.isStaking)
	require.True(t, b.hasStaked)

	require.Zero(t, s.totalStaked(t).Sign())
	require.Zero(t, s.custodyBalance(t).Sign())

	t.Run("repeated withdrawal", func(t *testing.T) {
		cAcc.InvokeFail(t, stakingconst.ErrNothingStaked, "withdraw", h)
	})

	// reward of an idle account does not grow
	s.skipBlocks(t, 3)
	require.Equal(t, bigMul(rateE18, 10), s.pendingRewards(t, h))

	txH = cAcc.Invoke(t, stackitem.Null{}, "claimRewards", h)
	aer = cAcc.CheckHalt(t, txH)

	claims := eventsByName(aer, s.staking.Hash, stakingconst.RewardsClaimedEvent)
	require.Len(t, claims, 1)
	require.Equal(t, stackitem.Make(bigMul(rateE18, 10)), claims[0][1])
	require.Equal(t, bigMul(rateE18, 10), s.rewardBalance(t, h))
}

func TestStakingRedeposit(t *testing.T) {
	s := newStakingEnv(t, 10, 10, 10)

	acc := s.e.NewAccount(t)
	cAcc := s.as(acc)
	h := acc.ScriptHash()

	cAcc.Invoke(t, stackitem.Null{}, "deposit", h, 100)
	s.skipBlocks(t, 4)
	cAcc.Invoke(t, stackitem.Null{}, "withdraw", h)

	a := s.getAccount(t, h)
	require.EqualValues(t, 50, a.pending.Int64())

	// idle period is not rewarded
	s.skipBlocks(t, 10)
	cAcc.Invoke(t, stackitem.Null{}, "deposit", h, 30)

	b := s.getAccount(t, h)
	require.EqualValues(t, 30, b.staked.Int64())
	require.EqualValues(t, 50, b.pending.Int64())
	require.True(t, b.checkpoint.Cmp(a.checkpoint) > 0)
	require.True(t, b.isStaking)
	require.EqualValues(t, 30, s.totalStaked(t).Int64())

	cAcc.Invoke(t, 1, "participantsCount")
}

// A deposits 100 at t=0, B deposits 100 at t=5 in the same transaction that
// settles A, both claim at t=15 with rate 1e18.
func TestStakingTwoStakers(t *testing.T) {
	s := newStakingEnv(t, rateE18, rateE18, rateE18)

	accA, accB := s.e.NewAccount(t), s.e.NewAccount(t)
	hA, hB := accA.ScriptHash(), accB.ScriptHash()

	s.as(accA).Invoke(t, stackitem.Null{}, "deposit", hA, 100)
	a0 := s.getAccount(t, hA)

	s.skipBlocks(t, 4)
	s.invokeInOneTx(t, []neotest.Signer{accB, s.e.Committee},
		s.stakingCall("distributeRewardsAll"),
		s.stakingCall("deposit", hB, 100),
	)

	a5, b5 := s.getAccount(t, hA), s.getAccount(t, hB)
	require.EqualValues(t, 5, new(big.Int).Sub(a5.checkpoint, a0.checkpoint).Int64())
	require.Equal(t, a5.checkpoint, b5.checkpoint)
	require.Equal(t, bigMul(5, rateE18), a5.pending)
	require.EqualValues(t, 200, s.totalStaked(t).Int64())

	s.skipBlocks(t, 9)
	aer := s.invokeInOneTx(t, []neotest.Signer{accA, accB},
		s.stakingCall("claimRewards", hA),
		s.stakingCall("claimRewards", hB),
	)

	claims := eventsByName(aer, s.staking.Hash, stakingconst.RewardsClaimedEvent)
	require.Len(t, claims, 2)
	require.Equal(t, []stackitem.Item{
		stackitem.NewByteArray(hA.BytesBE()),
		stackitem.Make(bigMul(10, rateE18)),
	}, claims[0])
	require.Equal(t, []stackitem.Item{
		stackitem.NewByteArray(hB.BytesBE()),
		stackitem.Make(bigMul(5, rateE18)),
	}, claims[1])

	a15 := s.getAccount(t, hA)
	require.EqualValues(t, 15, new(big.Int).Sub(a15.checkpoint, a0.checkpoint).Int64())
	require.Zero(t, a15.pending.Sign())

	require.Equal(t, bigMul(10, rateE18), s.rewardBalance(t, hA))
	require.Equal(t, bigMul(5, rateE18), s.rewardBalance(t, hB))
	s.reward.Invoke(t, bigMul(15, rateE18), "totalSupply")
}

// Without explicit settlement the stake of the other participants is taken
// into account only at the next own operation.
func TestStakingLazySettlement(t *testing.T) {
	s := newStakingEnv(t, rateE18, rateE18, rateE18)

	accA, accB := s.e.NewAccount(t), s.e.NewAccount(t)
	hA, hB := accA.ScriptHash(), accB.ScriptHash()

	s.as(accA).Invoke(t, stackitem.Null{}, "deposit", hA, 100)
	a0 := s.getAccount(t, hA)

	s.skipBlocks(t, 4)
	s.as(accB).Invoke(t, stackitem.Null{}, "deposit", hB, 100)
	s.skipBlocks(t, 9)

	s.as(accA).Invoke(t, stackitem.Null{}, "claimRewards", hA)

	a15 := s.getAccount(t, hA)
	elapsed := new(big.Int).Sub(a15.checkpoint, a0.checkpoint).Int64()
	require.EqualValues(t, 15, elapsed)

	expected := new(big.Int).Div(bigMul(rateE18, elapsed, 100), big.NewInt(200))
	require.Equal(t, expected, s.rewardBalance(t, hA))
}

func TestStakingClaimRewards(t *testing.T) {
	s := newStakingEnv(t, 10, 10, 10)

	acc := s.e.NewAccount(t)
	cAcc := s.as(acc)
	h := acc.ScriptHash()

	t.Run("never staked", func(t *testing.T) {
		cAcc.InvokeFail(t, stakingconst.ErrNoRewards, "claimRewards", h)
	})

	t.Run("missing witness", func(t *testing.T) {
		s.staking.InvokeFail(t, common.ErrAccountWitnessFailed, "claimRewards", h)
	})

	t.Run("same block as deposit", func(t *testing.T) {
		s.invokeInOneTxFail(t, stakingconst.ErrNoRewards, []neotest.Signer{acc},
			s.stakingCall("deposit", h, 100),
			s.stakingCall("claimRewards", h),
		)
		require.False(t, s.getAccount(t, h).hasStaked)
	})

	cAcc.Invoke(t, stackitem.Null{}, "deposit", h, 100)
	s.reward.Invoke(t, 0, "totalSupply")

	s.skipBlocks(t, 3)
	pending := s.pendingRewards(t, h)
	require.EqualValues(t, 50, pending.Int64())

	txH := cAcc.Invoke(t, stackitem.Null{}, "claimRewards", h)
	aer := cAcc.CheckHalt(t, txH)

	claims := eventsByName(aer, s.staking.Hash, stakingconst.RewardsClaimedEvent)
	require.Len(t, claims, 1)
	require.Equal(t, stackitem.Make(pending), claims[0][1])

	transfers := eventsByName(aer, s.reward.Hash, "Transfer")
	require.Len(t, transfers, 1)
	require.Equal(t, []stackitem.Item{
		stackitem.Null{},
		stackitem.NewByteArray(h.BytesBE()),
		stackitem.Make(pending),
	}, transfers[0])

	a := s.getAccount(t, h)
	require.Zero(t, a.pending.Sign())
	require.True(t, a.isStaking)
	require.EqualValues(t, 100, a.staked.Int64())
	require.Equal(t, pending, s.rewardBalance(t, h))
	s.reward.Invoke(t, pending, "totalSupply")

	t.Run("twice in one block", func(t *testing.T) {
		s.invokeInOneTxFail(t, stakingconst.ErrNoRewards, []neotest.Signer{acc},
			s.stakingCall("claimRewards", h),
			s.stakingCall("claimRewards", h),
		)
	})
}

func TestStakingProportionality(t *testing.T) {
	const rate = 1001

	s := newStakingEnv(t, rate, rate, rate)

	accA, accB := s.e.NewAccount(t), s.e.NewAccount(t)
	hA, hB := accA.ScriptHash(), accB.ScriptHash()

	s.invokeInOneTx(t, []neotest.Signer{accA, accB},
		s.stakingCall("deposit", hA, 100),
		s.stakingCall("deposit", hB, 300),
	)
	a0 := s.getAccount(t, hA)

	s.skipBlocks(t, 6)
	s.staking.Invoke(t, stackitem.Null{}, "distributeRewardsAll")

	a, b := s.getAccount(t, hA), s.getAccount(t, hB)
	require.Equal(t, a.checkpoint, b.checkpoint)

	elapsed := new(big.Int).Sub(a.checkpoint, a0.checkpoint).Int64()
	require.EqualValues(t, 7, elapsed)

	require.Equal(t, new(big.Int).Div(bigMul(rate, elapsed, 100), big.NewInt(400)), a.pending)
	require.Equal(t, new(big.Int).Div(bigMul(rate, elapsed, 300), big.NewInt(400)), b.pending)

	// pending_A / pending_B ~ 100 / 300 up to rounding
	diff := new(big.Int).Sub(new(big.Int).Mul(a.pending, big.NewInt(3)), b.pending)
	require.True(t, diff.CmpAbs(big.NewInt(3)) < 0)

	// the sum never exceeds rate * elapsed
	sum := new(big.Int).Add(a.pending, b.pending)
	require.True(t, sum.Cmp(bigMul(rate, elapsed)) <= 0)
}

func TestStakingDistributeRewardsAll(t *testing.T) {
	s := newStakingEnv(t, 1000, 1000, 1000)

	accA, accB, accC := s.e.NewAccount(t), s.e.NewAccount(t), s.e.NewAccount(t)
	hA, hB, hC := accA.ScriptHash(), accB.ScriptHash(), accC.ScriptHash()

	s.as(accA).Invoke(t, stackitem.Null{}, "deposit", hA, 10)
	s.as(accB).Invoke(t, stackitem.Null{}, "deposit", hB, 30)
	s.as(accC).Invoke(t, stackitem.Null{}, "deposit", hC, 60)
	s.as(accC).Invoke(t, stackitem.Null{}, "withdraw", hC)

	t.Run("not owner", func(t *testing.T) {
		s.as(accA).InvokeFail(t, common.ErrOwnerWitnessFailed, "distributeRewardsAll")
	})

	s.skipBlocks(t, 5)

	expA, expB := s.pendingRewards(t, hA), s.pendingRewards(t, hB)
	c0 := s.getAccount(t, hC)

	// repeated distribution in the same block changes nothing
	aer := s.invokeInOneTx(t, []neotest.Signer{s.e.Committee},
		s.stakingCall("distributeRewardsAll"),
		s.stakingCall("distributeRewardsAll"),
	)

	events := eventsByName(aer, s.staking.Hash, stakingconst.RewardsDistributedEvent)
	require.Len(t, events, 2)
	require.Equal(t, []stackitem.Item{stackitem.NewByteArray(s.e.CommitteeHash.BytesBE())}, events[0])

	a, b, c := s.getAccount(t, hA), s.getAccount(t, hB), s.getAccount(t, hC)
	require.Equal(t, expA, a.pending)
	require.Equal(t, expB, b.pending)
	require.Equal(t, a.checkpoint, b.checkpoint)

	// withdrawn accounts are skipped
	require.Zero(t, c.checkpoint.Cmp(c0.checkpoint))
	require.Zero(t, c.pending.Cmp(c0.pending))
}

func TestStakingSetRewardRate(t *testing.T) {
	s := newStakingEnv(t, 10, 5, 20)

	acc := s.e.NewAccount(t)

	t.Run("not owner", func(t *testing.T) {
		s.as(acc).InvokeFail(t, common.ErrOwnerWitnessFailed, "setRewardRate", 15)
	})

	t.Run("out of bounds", func(t *testing.T) {
		s.staking.InvokeFail(t, stakingconst.ErrRateOutOfBounds, "setRewardRate", 4)
		s.staking.InvokeFail(t, stakingconst.ErrRateOutOfBounds, "setRewardRate", 21)
		s.staking.Invoke(t, 10, "rewardRate")
	})

	txH := s.staking.Invoke(t, stackitem.Null{}, "setRewardRate", 20)
	aer := s.staking.CheckHalt(t, txH)

	events := eventsByName(aer, s.staking.Hash, stakingconst.RewardRateChangedEvent)
	require.Len(t, events, 1)
	require.Equal(t, []stackitem.Item{stackitem.Make(10), stackitem.Make(20)}, events[0])

	s.staking.Invoke(t, 20, "rewardRate")

	t.Run("bounds inclusive", func(t *testing.T) {
		s.staking.Invoke(t, stackitem.Null{}, "setRewardRate", 5)
		s.staking.Invoke(t, 5, "rewardRate")
	})

	t.Run("fixed rate", func(t *testing.T) {
		fixed := newStakingEnv(t, 10, 10, 10)
		fixed.staking.InvokeFail(t, stakingconst.ErrRateOutOfBounds, "setRewardRate", 11)
		fixed.staking.Invoke(t, stackitem.Null{}, "setRewardRate", 10)
	})
}

func TestStakingTransferOwnership(t *testing.T) {
	s := newStakingEnv(t, 10, 5, 20)

	acc := s.e.NewAccount(t)
	h := acc.ScriptHash()

	t.Run("not owner", func(t *testing.T) {
		s.as(acc).InvokeFail(t, common.ErrOwnerWitnessFailed, "transferOwnership", h)
	})

	t.Run("invalid address", func(t *testing.T) {
		s.staking.InvokeFail(t, stakingconst.ErrInvalidAddress, "transferOwnership", []byte{1, 2, 3})
	})

	txH := s.staking.Invoke(t, stackitem.Null{}, "transferOwnership", h)
	aer := s.staking.CheckHalt(t, txH)

	events := eventsByName(aer, s.staking.Hash, stakingconst.OwnershipTransferredEvent)
	require.Len(t, events, 1)
	require.Equal(t, []stackitem.Item{
		stackitem.NewByteArray(s.e.CommitteeHash.BytesBE()),
		stackitem.NewByteArray(h.BytesBE()),
	}, events[0])

	s.staking.Invoke(t, h.BytesBE(), "owner")

	s.staking.InvokeFail(t, common.ErrOwnerWitnessFailed, "setRewardRate", 15)
	s.as(acc).Invoke(t, stackitem.Null{}, "setRewardRate", 15)
	s.as(acc).Invoke(t, stackitem.Null{}, "distributeRewardsAll")
}

func TestStakingListParticipants(t *testing.T) {
	s := newStakingEnv(t, 10, 10, 10)

	accs := []neotest.Signer{s.e.NewAccount(t), s.e.NewAccount(t), s.e.NewAccount(t)}

	expected := make(map[util.Uint160]struct{}, len(accs))
	for _, acc := range accs {
		h := acc.ScriptHash()
		s.as(acc).Invoke(t, stackitem.Null{}, "deposit", h, 10)
		expected[h] = struct{}{}
	}

	// withdrawn accounts stay registered
	s.as(accs[0]).Invoke(t, stackitem.Null{}, "withdraw", accs[0].ScriptHash())
	s.as(accs[0]).Invoke(t, stackitem.Null{}, "deposit", accs[0].ScriptHash(), 5)

	s.staking.Invoke(t, len(accs), "participantsCount")

	st, err := s.staking.TestInvoke(t, "listParticipants")
	require.NoError(t, err)

	items := iteratorToArray(st.Pop().Value().(*storage.Iterator))
	require.Len(t, items, len(accs))

	for _, item := range items {
		bs, err := item.TryBytes()
		require.NoError(t, err)

		h, err := util.Uint160DecodeBytesBE(bs)
		require.NoError(t, err)
		require.Contains(t, expected, h)
	}
}

// TestStakingRandomOperations checks ledger invariants after every operation
// of a random sequence:
//   - total stake is equal to the sum of account stakes and to the stake
//     token balance of the contract;
//   - settled reward grows until it is claimed;
//   - checkpoint grows and never exceeds current height.
func TestStakingRandomOperations(t *testing.T) {
	const (
		steps     = 60
		maxAmount = 1000
	)

	s := newStakingEnv(t, 7919, 1, 10000)
	r := rand.New(rand.NewSource(42))

	accs := make([]neotest.Signer, 4)
	for i := range accs {
		accs[i] = s.e.NewAccount(t)
	}

	prev := make([]account, len(accs))
	for i := range accs {
		prev[i] = s.getAccount(t, accs[i].ScriptHash())
	}

	for step := 0; step < steps; step++ {
		i := r.Intn(len(accs))
		acc, h := accs[i], accs[i].ScriptHash()
		claimed := false

		switch op := r.Intn(6); op {
		case 0, 1:
			s.as(acc).Invoke(t, stackitem.Null{}, "deposit", h, 1+r.Intn(maxAmount))
		case 2:
			if prev[i].isStaking {
				s.as(acc).Invoke(t, stackitem.Null{}, "withdraw", h)
			} else {
				s.as(acc).InvokeFail(t, stakingconst.ErrNothingStaked, "withdraw", h)
			}
		case 3:
			if s.pendingRewards(t, h).Sign() > 0 {
				s.as(acc).Invoke(t, stackitem.Null{}, "claimRewards", h)
				claimed = true
			} else {
				s.as(acc).InvokeFail(t, stakingconst.ErrNoRewards, "claimRewards", h)
			}
		case 4:
			s.staking.Invoke(t, stackitem.Null{}, "distributeRewardsAll")
		default:
			s.staking.Invoke(t, stackitem.Null{}, "setRewardRate", 1+r.Intn(10000))
		}

		var (
			sum    = new(big.Int)
			height = big.NewInt(int64(s.e.Chain.BlockHeight()))
		)

		for j := range accs {
			cur := s.getAccount(t, accs[j].ScriptHash())
			sum.Add(sum, cur.staked)

			if j != i || !claimed {
				require.True(t, cur.pending.Cmp(prev[j].pending) >= 0,
					"step %d: pending of account %d decreased", step, j)
			}
			require.True(t, cur.checkpoint.Cmp(prev[j].checkpoint) >= 0,
				"step %d: checkpoint of account %d moved back", step, j)
			require.True(t, cur.checkpoint.Cmp(height) <= 0,
				"step %d: checkpoint of account %d is in the future", step, j)

			prev[j] = cur
		}

		total := s.totalStaked(t)
		require.Zero(t, sum.Cmp(total), "step %d: total %s, sum %s", step, total, sum)
		require.Zero(t, total.Cmp(s.custodyBalance(t)), "step %d", step)
	}
}

func TestStakingClaimRewardsMintFailure(t *testing.T) {
	otherMinter := util.Uint160{1, 2, 3}
	s := newStakingEnvWithMinter(t, &otherMinter, 10, 10, 10)

	acc := s.e.NewAccount(t)
	cAcc := s.as(acc)
	h := acc.ScriptHash()

	cAcc.Invoke(t, stackitem.Null{}, "deposit", h, 100)
	s.skipBlocks(t, 3)

	before := s.getAccount(t, h)
	pending := s.pendingRewards(t, h)
	require.Positive(t, pending.Sign())

	txH := cAcc.InvokeFail(t, rewardconst.ErrNotMinter, "claimRewards", h)
	aer := s.e.GetTxExecResult(t, txH)
	require.Empty(t, eventsByName(aer, s.staking.Hash, stakingconst.RewardsClaimedEvent))

	after := s.getAccount(t, h)
	require.Zero(t, after.checkpoint.Cmp(before.checkpoint))
	require.Zero(t, after.pending.Cmp(before.pending))
	require.Zero(t, after.staked.Cmp(before.staked))
	require.True(t, after.isStaking)

	require.Zero(t, s.rewardBalance(t, h).Sign())
	require.Zero(t, s.readInt(t, s.reward, "totalSupply").Sign())

	// unclaimed reward keeps accruing
	require.Positive(t, s.pendingRewards(t, h).Cmp(pending))
}
