package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cmdMain = &cobra.Command{
	Use:          "lpstaking",
	Short:        "LP Staking contracts deployment and monitoring tool",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return readConfig(viper.GetViper(), flagMain.ConfigFile)
	},
}

var flagMain struct {
	ConfigFile string
}

func init() {
	flags := cmdMain.PersistentFlags()
	flags.StringVarP(&flagMain.ConfigFile, "config", "c", "", "Path to the YAML configuration file")
	flags.String(cfgRPCEndpoint, "", "Network address of the Neo RPC server")
	flags.Duration(cfgRPCTimeout, defaultRPCTimeout, "Neo RPC dial and request timeout")
	flags.String(cfgLogLevel, defaultLogLevel, "Logging level (debug, info, warn, error)")
	flags.String(cfgStakingContract, "", "Address of the Staking contract")

	bindFlags(viper.GetViper(), flags, cfgRPCEndpoint, cfgRPCTimeout, cfgLogLevel, cfgStakingContract)

	cmdMain.AddCommand(cmdDeploy, cmdStatus, cmdExporter, cmdAccounts)
}

func main() {
	err := cmdMain.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
