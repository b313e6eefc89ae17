package tests

import (
	"testing"

	"github.com/nspcc-dev/lp-staking-contract/common"
	"github.com/nspcc-dev/lp-staking-contract/contracts/reward/rewardconst"
	"github.com/nspcc-dev/lp-staking-contract/contracts/staking/stakingconst"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func TestRewardGeneric(t *testing.T) {
	s := newStakingEnv(t, 10, 10, 10)

	s.reward.Invoke(t, rewardconst.Symbol, "symbol")
	s.reward.Invoke(t, rewardconst.Decimals, "decimals")
	s.reward.Invoke(t, 0, "totalSupply")
	s.reward.Invoke(t, common.Version, "version")
	s.reward.Invoke(t, 0, "balanceOf", s.e.CommitteeHash)

	t.Run("update", func(t *testing.T) {
		acc := s.e.NewAccount(t)
		s.reward.WithSigners(acc).InvokeFail(t, common.ErrCommitteeWitnessFailed,
			"update", []byte{}, []byte{}, nil)
	})
}

func TestRewardMint(t *testing.T) {
	s := newStakingEnv(t, 10, 10, 10)

	acc := s.e.NewAccount(t)
	h := acc.ScriptHash()

	t.Run("not minter", func(t *testing.T) {
		s.reward.InvokeFail(t, rewardconst.ErrNotMinter, "mint", h, 100)
		s.reward.WithSigners(acc).InvokeFail(t, rewardconst.ErrNotMinter, "mint", h, 100)
	})

	t.Run("invalid amount", func(t *testing.T) {
		s.reward.InvokeFail(t, rewardconst.ErrNonPositiveAmount, "mint", h, 0)
	})

	s.as(acc).Invoke(t, stackitem.Null{}, "deposit", h, 100)
	s.skipBlocks(t, 2)
	s.as(acc).Invoke(t, stackitem.Null{}, "claimRewards", h)

	// 3 blocks since deposit with rate 10
	s.reward.Invoke(t, 30, "balanceOf", h)
	s.reward.Invoke(t, 30, "totalSupply")
}

func TestRewardTransfer(t *testing.T) {
	s := newStakingEnv(t, 10, 10, 10)

	accA, accB := s.e.NewAccount(t), s.e.NewAccount(t)
	hA, hB := accA.ScriptHash(), accB.ScriptHash()

	s.as(accA).Invoke(t, stackitem.Null{}, "deposit", hA, 100)
	s.skipBlocks(t, 4)
	s.as(accA).Invoke(t, stackitem.Null{}, "claimRewards", hA)

	cA := s.reward.WithSigners(accA)
	cA.Invoke(t, 50, "balanceOf", hA)

	t.Run("missing witness", func(t *testing.T) {
		s.reward.WithSigners(accB).Invoke(t, false, "transfer", hA, hB, 10, nil)
	})

	t.Run("not enough funds", func(t *testing.T) {
		cA.Invoke(t, false, "transfer", hA, hB, 51, nil)
	})

	t.Run("invalid address", func(t *testing.T) {
		cA.InvokeFail(t, rewardconst.ErrInvalidAddress, "transfer", hA, []byte{1, 2, 3}, 10, nil)
	})

	t.Run("negative amount", func(t *testing.T) {
		cA.InvokeFail(t, rewardconst.ErrNegativeAmount, "transfer", hA, hB, -1, nil)
	})

	t.Run("to contract", func(t *testing.T) {
		// Staking contract accepts stake token only
		cA.InvokeFail(t, stakingconst.ErrUnsupportedToken, "transfer", hA, s.staking.Hash, 10, nil)
	})

	txH := cA.Invoke(t, true, "transfer", hA, hB, 20, nil)
	aer := cA.CheckHalt(t, txH)

	transfers := eventsByName(aer, s.reward.Hash, "Transfer")
	require.Len(t, transfers, 1)
	require.Equal(t, []stackitem.Item{
		stackitem.NewByteArray(hA.BytesBE()),
		stackitem.NewByteArray(hB.BytesBE()),
		stackitem.Make(20),
	}, transfers[0])

	cA.Invoke(t, 30, "balanceOf", hA)
	cA.Invoke(t, 20, "balanceOf", hB)
	cA.Invoke(t, 50, "totalSupply")

	t.Run("whole balance", func(t *testing.T) {
		cB := s.reward.WithSigners(accB)
		cB.Invoke(t, true, "transfer", hB, hA, 20, nil)
		cB.Invoke(t, 0, "balanceOf", hB)
		cB.Invoke(t, 50, "balanceOf", hA)
	})
}
