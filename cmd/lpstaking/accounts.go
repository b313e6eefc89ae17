package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/nspcc-dev/lp-staking-contract/rpc/staking"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Storage key prefix of account records in the Staking contract.
const accountRecordPrefix = 'a'

var cmdAccounts = &cobra.Command{
	Use:   "accounts",
	Short: "Dump stored account records of the Staking contract",
	Long: `Dump raw account records directly from the Staking contract storage at
the latest state root. RPC server must have StateRoot and historical
storage lookup enabled. Stored records are not settled, so printed pending
reward does not include the reward accrued since the account checkpoint.`,
	Args: cobra.NoArgs,
	RunE: runAccounts,
}

func runAccounts(cmd *cobra.Command, _ []string) error {
	v := viper.GetViper()

	endpoint, err := rpcEndpoint(v)
	if err != nil {
		return err
	}

	contract, err := stakingContract(v)
	if err != nil {
		return err
	}

	b, err := newRemoteBlockchain(cmd.Context(), endpoint, v.GetDuration(cfgRPCTimeout))
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}
	defer b.close()

	w := cmd.OutOrStdout()

	return b.iterateContractStorage(contract, []byte{accountRecordPrefix}, func(key, value []byte) error {
		return printAccountRecord(w, key, value)
	})
}

var errInvalidRecordKey = errors.New("invalid account record key")

// decodeAccountRecord decodes account address and its stored state from the
// Staking contract storage item.
func decodeAccountRecord(key, value []byte) (util.Uint160, staking.StakingAccount, error) {
	var acc staking.StakingAccount

	if len(key) != 1+util.Uint160Size || key[0] != accountRecordPrefix {
		return util.Uint160{}, acc, fmt.Errorf("%w: %x", errInvalidRecordKey, key)
	}

	h, err := util.Uint160DecodeBytesBE(key[1:])
	if err != nil {
		return util.Uint160{}, acc, fmt.Errorf("decode account address: %w", err)
	}

	item, err := stackitem.Deserialize(value)
	if err != nil {
		return h, acc, fmt.Errorf("deserialize record of %s: %w", address.Uint160ToString(h), err)
	}

	err = acc.FromStackItem(item)
	if err != nil {
		return h, acc, fmt.Errorf("decode record of %s: %w", address.Uint160ToString(h), err)
	}

	return h, acc, nil
}

func printAccountRecord(w io.Writer, key, value []byte) error {
	h, acc, err := decodeAccountRecord(key, value)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\tstaked=%s\tcheckpoint=%s\tpending=%s\tstaking=%t\n",
		address.Uint160ToString(h), acc.Staked, acc.Checkpoint, acc.Pending, acc.IsStaking)

	return err
}
