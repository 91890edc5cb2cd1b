// Package cmd provides the command-line interface for propriosim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/propriosim/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "propriosim",
	Short: "propriosim simulates proprioceptive nodes.",
	Long: `propriosim simulates proprioceptive nodes at the transaction ` +
		`level. It runs topologies described in YAML files, prints the ` +
		`key parameters of their nodes, and reads recorded traces back.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "",
		"Topology file. A single default node is used when empty.")
	rootCmd.PersistentFlags().StringSlice("env", []string{".env"},
		"Env files with PROPRIOSIM_* overrides. Missing files are skipped.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFiles, _ := cmd.Flags().GetStringSlice("env")

	c := config.Default()
	if path != "" {
		var err error

		c, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}

	if err := c.ApplyEnv(envFiles...); err != nil {
		return nil, err
	}

	return c, nil
}
