package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Configuration keys. Each of them can be set in the config file, through
// LPSTAKING_<KEY> environment variable (dots replaced with underscores) or
// command line flag of the same name.
const (
	cfgRPCEndpoint     = "rpc.endpoint"
	cfgRPCTimeout      = "rpc.timeout"
	cfgLogLevel        = "log.level"
	cfgStakingContract = "staking.contract"

	cfgWalletPath     = "wallet.path"
	cfgWalletAddress  = "wallet.address"
	cfgWalletPassword = "wallet.password"

	cfgDeployContracts  = "deploy.contracts"
	cfgDeployOwner      = "deploy.owner"
	cfgDeployStakeToken = "deploy.stake_token"
	cfgDeployRate       = "deploy.reward_rate"
	cfgDeployMinRate    = "deploy.min_reward_rate"
	cfgDeployMaxRate    = "deploy.max_reward_rate"

	cfgExporterListen   = "exporter.listen"
	cfgExporterInterval = "exporter.interval"
	cfgExporterAccounts = "exporter.accounts"
)

const (
	envPrefix = "LPSTAKING"

	defaultRPCTimeout       = 15 * time.Second
	defaultLogLevel         = "info"
	defaultExporterListen   = ":9090"
	defaultExporterInterval = 15 * time.Second
)

var (
	errMissingRPCEndpoint = errors.New("missing Neo RPC endpoint")
	errMissingContract    = errors.New("missing Staking contract address")
	errMissingWallet      = errors.New("missing wallet path")
)

// readConfig reads optional configuration file and enables environment
// variables.
func readConfig(v *viper.Viper, path string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		return nil
	}

	v.SetConfigFile(path)

	err := v.ReadInConfig()
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys ...string) {
	for _, k := range keys {
		err := v.BindPFlag(k, flags.Lookup(k))
		if err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", k, err))
		}
	}
}

func rpcEndpoint(v *viper.Viper) (string, error) {
	s := strings.TrimSpace(v.GetString(cfgRPCEndpoint))
	if s == "" {
		return "", errMissingRPCEndpoint
	}
	return s, nil
}

func stakingContract(v *viper.Viper) (util.Uint160, error) {
	s := strings.TrimSpace(v.GetString(cfgStakingContract))
	if s == "" {
		return util.Uint160{}, errMissingContract
	}

	h, err := parseAddress(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid %s: %w", cfgStakingContract, err)
	}

	return h, nil
}

// parseAddress decodes Neo address either in base58 form or as LE hex string.
func parseAddress(s string) (util.Uint160, error) {
	h, err := address.StringToUint160(s)
	if err == nil {
		return h, nil
	}

	h, errLE := util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
	if errLE != nil {
		return util.Uint160{}, fmt.Errorf("neither Neo address (%v) nor LE hex string (%v)", err, errLE)
	}

	return h, nil
}

func newLogger(v *viper.Viper) (*zap.Logger, error) {
	var lvl zapcore.Level

	err := lvl.UnmarshalText([]byte(v.GetString(cfgLogLevel)))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", cfgLogLevel, err)
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return c.Build()
}
