package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "TOOLKIT"

var rootCmd = &cobra.Command{
	Use:           "toolkit",
	Short:         "Write log entries and check configuration files",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initEnv)
}

// initEnv lets TOOLKIT_LOG_FILE and friends override flag defaults.
func initEnv() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}
