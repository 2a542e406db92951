// Package cmd implements the CLI commands for ebay-bridge.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ebay-bridge",
	Short: "Credential and item-resolution bridge for eBay seller tools",
	Long: "ebay-bridge exchanges OAuth2 and legacy Auth'n'Auth credentials with eBay\n" +
		"and resolves item details through a Browse-then-Trading strategy chain\n" +
		"that degrades to a synthetic record instead of failing.",
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	cobra.CheckErr(viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(signInURLCommand())
	rootCmd.AddCommand(versionCommand())
}

func initEnv() {
	viper.SetEnvPrefix("EBRIDGE")
	viper.AutomaticEnv()
}

// configPath resolves the config file path, preferring the EBRIDGE_CONFIG
// environment variable over the flag default.
func configPath() string {
	if p := viper.GetString("config"); p != "" {
		return p
	}
	return cfgFile
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
