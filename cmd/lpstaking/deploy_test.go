package main

import (
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestStakingDeployPrm(t *testing.T) {
	token := util.Uint160{1, 2, 3}
	owner := util.Uint160{4, 5, 6}

	t.Run("fixed rate", func(t *testing.T) {
		v := viper.New()
		v.Set(cfgDeployStakeToken, token.StringLE())
		v.Set(cfgDeployRate, "1000")

		prm, err := stakingDeployPrm(v)
		require.NoError(t, err)
		require.Equal(t, token, prm.StakeToken)
		require.True(t, prm.Owner.Equals(util.Uint160{}))
		require.EqualValues(t, 1000, prm.RewardRate.Int64())
		require.EqualValues(t, 1000, prm.MinRewardRate.Int64())
		require.EqualValues(t, 1000, prm.MaxRewardRate.Int64())

		// bounds must not alias the rate
		prm.MinRewardRate.SetInt64(1)
		require.EqualValues(t, 1000, prm.RewardRate.Int64())
	})

	t.Run("bounds", func(t *testing.T) {
		v := viper.New()
		v.Set(cfgDeployStakeToken, address.Uint160ToString(token))
		v.Set(cfgDeployOwner, address.Uint160ToString(owner))
		v.Set(cfgDeployRate, "10")
		v.Set(cfgDeployMinRate, "1")
		v.Set(cfgDeployMaxRate, "100000000000000000000")

		prm, err := stakingDeployPrm(v)
		require.NoError(t, err)
		require.Equal(t, owner, prm.Owner)
		require.EqualValues(t, 1, prm.MinRewardRate.Int64())
		require.Equal(t, "100000000000000000000", prm.MaxRewardRate.String())
	})

	for _, tc := range []struct {
		name string
		set  map[string]string
	}{
		{name: "no token", set: map[string]string{cfgDeployRate: "1"}},
		{name: "invalid token", set: map[string]string{cfgDeployStakeToken: "token", cfgDeployRate: "1"}},
		{name: "no rate", set: map[string]string{cfgDeployStakeToken: token.StringLE()}},
		{name: "invalid rate", set: map[string]string{cfgDeployStakeToken: token.StringLE(), cfgDeployRate: "1.5"}},
		{name: "invalid owner", set: map[string]string{
			cfgDeployStakeToken: token.StringLE(),
			cfgDeployRate:       "1",
			cfgDeployOwner:      "owner",
		}},
		{name: "invalid max", set: map[string]string{
			cfgDeployStakeToken: token.StringLE(),
			cfgDeployRate:       "1",
			cfgDeployMaxRate:    "max",
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tc.set {
				v.Set(k, val)
			}

			_, err := stakingDeployPrm(v)
			require.Error(t, err)
		})
	}
}

func TestOpenAccount(t *testing.T) {
	const pass = "secret"

	path := filepath.Join(t.TempDir(), "wallet.json")

	w, err := wallet.NewWallet(path)
	require.NoError(t, err)

	w.Scrypt = keys.ScryptParams{N: 2, R: 1, P: 1}

	acc1, err := wallet.NewAccount()
	require.NoError(t, err)
	require.NoError(t, acc1.Encrypt(pass, w.Scrypt))

	acc2, err := wallet.NewAccount()
	require.NoError(t, err)
	require.NoError(t, acc2.Encrypt(pass, w.Scrypt))

	w.AddAccount(acc1)
	w.AddAccount(acc2)
	require.NoError(t, w.Save())
	w.Close()

	v := viper.New()
	v.Set(cfgWalletPath, path)
	v.Set(cfgWalletPassword, pass)

	acc, err := openAccount(v)
	require.NoError(t, err)
	require.Equal(t, acc1.ScriptHash(), acc.ScriptHash())
	require.NotNil(t, acc.PrivateKey())

	v.Set(cfgWalletAddress, acc2.Address)
	acc, err = openAccount(v)
	require.NoError(t, err)
	require.Equal(t, acc2.ScriptHash(), acc.ScriptHash())

	t.Run("unknown address", func(t *testing.T) {
		v.Set(cfgWalletAddress, address.Uint160ToString(util.Uint160{1}))
		_, err := openAccount(v)
		require.Error(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		v.Set(cfgWalletAddress, acc2.Address)
		v.Set(cfgWalletPassword, "wrong")
		_, err := openAccount(v)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		v.Set(cfgWalletPath, filepath.Join(t.TempDir(), "missing.json"))
		_, err := openAccount(v)
		require.Error(t, err)
	})
}
