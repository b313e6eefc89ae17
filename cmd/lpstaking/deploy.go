package main

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/nspcc-dev/lp-staking-contract/contracts"
	"github.com/nspcc-dev/lp-staking-contract/deploy"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cmdDeploy = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy Staking and Reward contracts",
	Long: `Deploy compiled Staking and Reward token contracts signing transactions
with the configured wallet account. Contracts already present on the chain
are skipped, so the command can be safely repeated.`,
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

func init() {
	flags := cmdDeploy.Flags()
	flags.String(cfgWalletPath, "", "Path to the NEP-6 wallet file")
	flags.String(cfgWalletAddress, "", "Wallet account address (default account if empty)")
	flags.String(cfgWalletPassword, "", "Wallet account password")
	flags.String(cfgDeployContracts, "", "Directory with compiled contracts")
	flags.String(cfgDeployOwner, "", "Staking contract owner (wallet account if empty)")
	flags.String(cfgDeployStakeToken, "", "NEP-17 token accepted as stake")
	flags.String(cfgDeployRate, "", "Initial reward rate per block")
	flags.String(cfgDeployMinRate, "", "Minimum reward rate (initial rate if empty)")
	flags.String(cfgDeployMaxRate, "", "Maximum reward rate (initial rate if empty)")

	bindFlags(viper.GetViper(), flags,
		cfgWalletPath, cfgWalletAddress, cfgWalletPassword,
		cfgDeployContracts, cfgDeployOwner, cfgDeployStakeToken,
		cfgDeployRate, cfgDeployMinRate, cfgDeployMaxRate)
}

func runDeploy(cmd *cobra.Command, _ []string) error {
	v := viper.GetViper()

	log, err := newLogger(v)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	endpoint, err := rpcEndpoint(v)
	if err != nil {
		return err
	}

	acc, err := openAccount(v)
	if err != nil {
		return err
	}

	dir := v.GetString(cfgDeployContracts)
	if dir == "" {
		return fmt.Errorf("missing %s", cfgDeployContracts)
	}

	set, err := contracts.Read(os.DirFS(dir))
	if err != nil {
		return fmt.Errorf("read contracts from %s: %w", dir, err)
	}

	stakingPrm, err := stakingDeployPrm(v)
	if err != nil {
		return err
	}

	stakingPrm.Common = deploy.CommonDeployPrm{NEF: set.Staking.NEF, Manifest: set.Staking.Manifest}

	b, err := newRemoteBlockchain(cmd.Context(), endpoint, v.GetDuration(cfgRPCTimeout))
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}
	defer b.close()

	res, err := deploy.Deploy(cmd.Context(), deploy.Prm{
		Logger:          log,
		Blockchain:      b.rpc,
		LocalAccount:    acc,
		StakingContract: stakingPrm,
		RewardContract: deploy.RewardContractPrm{
			Common: deploy.CommonDeployPrm{NEF: set.Reward.NEF, Manifest: set.Reward.Manifest},
		},
	})
	if err != nil {
		return err
	}

	log.Info("LP staking is ready",
		zap.String("staking", address.Uint160ToString(res.Staking)),
		zap.String("reward", address.Uint160ToString(res.Reward)))

	cmd.Printf("Staking: %s\nReward: %s\n", res.Staking.StringLE(), res.Reward.StringLE())

	return nil
}

func stakingDeployPrm(v *viper.Viper) (deploy.StakingContractPrm, error) {
	var (
		res deploy.StakingContractPrm
		err error
	)

	token := v.GetString(cfgDeployStakeToken)
	if token == "" {
		return res, fmt.Errorf("missing %s", cfgDeployStakeToken)
	}

	res.StakeToken, err = parseAddress(token)
	if err != nil {
		return res, fmt.Errorf("invalid %s: %w", cfgDeployStakeToken, err)
	}

	if owner := v.GetString(cfgDeployOwner); owner != "" {
		res.Owner, err = parseAddress(owner)
		if err != nil {
			return res, fmt.Errorf("invalid %s: %w", cfgDeployOwner, err)
		}
	}

	res.RewardRate, err = parseBigInt(v, cfgDeployRate, nil)
	if err != nil {
		return res, err
	}

	res.MinRewardRate, err = parseBigInt(v, cfgDeployMinRate, res.RewardRate)
	if err != nil {
		return res, err
	}

	res.MaxRewardRate, err = parseBigInt(v, cfgDeployMaxRate, res.RewardRate)
	if err != nil {
		return res, err
	}

	return res, nil
}

// parseBigInt reads decimal integer by the key. def is returned for missing
// values, nil def makes the value mandatory.
func parseBigInt(v *viper.Viper, key string, def *big.Int) (*big.Int, error) {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		if def == nil {
			return nil, fmt.Errorf("missing %s", key)
		}
		return new(big.Int).Set(def), nil
	}

	res, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s: %q is not a decimal integer", key, s)
	}

	return res, nil
}

// openAccount opens wallet and decrypts its account.
func openAccount(v *viper.Viper) (*wallet.Account, error) {
	path := v.GetString(cfgWalletPath)
	if path == "" {
		return nil, errMissingWallet
	}

	w, err := wallet.NewWalletFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}
	defer w.Close()

	var h util.Uint160

	if addr := v.GetString(cfgWalletAddress); addr != "" {
		h, err = address.StringToUint160(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", cfgWalletAddress, err)
		}
	} else {
		h = w.GetChangeAddress()
	}

	acc := w.GetAccount(h)
	if acc == nil {
		return nil, fmt.Errorf("account %s is missing in the wallet", address.Uint160ToString(h))
	}

	err = acc.Decrypt(v.GetString(cfgWalletPassword), w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account %s: %w", address.Uint160ToString(h), err)
	}

	return acc, nil
}
