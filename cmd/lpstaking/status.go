package main

import (
	"fmt"
	"io"
	"math/big"

	"github.com/nspcc-dev/lp-staking-contract/rpc/reward"
	"github.com/nspcc-dev/lp-staking-contract/rpc/staking"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cmdStatus = &cobra.Command{
	Use:   "status [ACCOUNT...]",
	Short: "Print Staking contract state",
	Long: `Print global Staking contract state. If accounts are passed, their stake
and claimable rewards are printed as well.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()

	endpoint, err := rpcEndpoint(v)
	if err != nil {
		return err
	}

	contract, err := stakingContract(v)
	if err != nil {
		return err
	}

	accounts := make([]util.Uint160, len(args))
	for i := range args {
		accounts[i], err = parseAddress(args[i])
		if err != nil {
			return fmt.Errorf("invalid account #%d: %w", i, err)
		}
	}

	b, err := newRemoteBlockchain(cmd.Context(), endpoint, v.GetDuration(cfgRPCTimeout))
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}
	defer b.close()

	inv := b.invoker()

	return printStatus(cmd.OutOrStdout(), staking.NewReader(inv, contract), func(h util.Uint160) supplyReader {
		return reward.NewReader(inv, h)
	}, accounts)
}

// statusReader is a subset of staking.ContractReader used by printStatus.
type statusReader interface {
	Version() (*big.Int, error)
	Owner() (util.Uint160, error)
	StakeToken() (util.Uint160, error)
	RewardToken() (util.Uint160, error)
	TotalStaked() (*big.Int, error)
	RewardRate() (*big.Int, error)
	MinRewardRate() (*big.Int, error)
	MaxRewardRate() (*big.Int, error)
	ParticipantsCount() (*big.Int, error)
	GetAccount(util.Uint160) (*staking.StakingAccount, error)
	PendingRewards(util.Uint160) (*big.Int, error)
}

// supplyReader is a subset of reward.ContractReader used by printStatus.
type supplyReader interface {
	Symbol() (string, error)
	TotalSupply() (*big.Int, error)
}

func printStatus(w io.Writer, r statusReader, rewardReader func(util.Uint160) supplyReader, accounts []util.Uint160) error {
	version, err := r.Version()
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}

	owner, err := r.Owner()
	if err != nil {
		return fmt.Errorf("get owner: %w", err)
	}

	stakeToken, err := r.StakeToken()
	if err != nil {
		return fmt.Errorf("get stake token: %w", err)
	}

	rewardToken, err := r.RewardToken()
	if err != nil {
		return fmt.Errorf("get reward token: %w", err)
	}

	total, err := r.TotalStaked()
	if err != nil {
		return fmt.Errorf("get total staked: %w", err)
	}

	rate, err := r.RewardRate()
	if err != nil {
		return fmt.Errorf("get reward rate: %w", err)
	}

	minRate, err := r.MinRewardRate()
	if err != nil {
		return fmt.Errorf("get min reward rate: %w", err)
	}

	maxRate, err := r.MaxRewardRate()
	if err != nil {
		return fmt.Errorf("get max reward rate: %w", err)
	}

	count, err := r.ParticipantsCount()
	if err != nil {
		return fmt.Errorf("get participants count: %w", err)
	}

	rr := rewardReader(rewardToken)

	symbol, err := rr.Symbol()
	if err != nil {
		return fmt.Errorf("get reward token symbol: %w", err)
	}

	supply, err := rr.TotalSupply()
	if err != nil {
		return fmt.Errorf("get reward token supply: %w", err)
	}

	fmt.Fprintf(w, "Version:      %s\n", version)
	fmt.Fprintf(w, "Owner:        %s\n", address.Uint160ToString(owner))
	fmt.Fprintf(w, "Stake token:  %s\n", stakeToken.StringLE())
	fmt.Fprintf(w, "Reward token: %s\n", rewardToken.StringLE())
	fmt.Fprintf(w, "Minted:       %s %s\n", supply, symbol)
	fmt.Fprintf(w, "Total staked: %s\n", total)
	fmt.Fprintf(w, "Reward rate:  %s [%s, %s]\n", rate, minRate, maxRate)
	fmt.Fprintf(w, "Participants: %s\n", count)

	for i := range accounts {
		acc, err := r.GetAccount(accounts[i])
		if err != nil {
			return fmt.Errorf("get account %s: %w", address.Uint160ToString(accounts[i]), err)
		}

		pending, err := r.PendingRewards(accounts[i])
		if err != nil {
			return fmt.Errorf("get pending rewards of %s: %w", address.Uint160ToString(accounts[i]), err)
		}

		fmt.Fprintf(w, "\n%s:\n", address.Uint160ToString(accounts[i]))
		fmt.Fprintf(w, "\tStaked:     %s\n", acc.Staked)
		fmt.Fprintf(w, "\tCheckpoint: %s\n", acc.Checkpoint)
		fmt.Fprintf(w, "\tClaimable:  %s\n", pending)
		fmt.Fprintf(w, "\tStaking:    %t\n", acc.IsStaking)
	}

	return nil
}
