package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/propriosim/config"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print the key parameters of the nodes.",
	Long: "`params` prints the latencies and memory sizes derived for " +
		"every node of the topology.",
	RunE: printParams,
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}

func printParams(cmd *cobra.Command, _ []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	for _, n := range c.Nodes {
		p, err := c.Derive(n)
		if err != nil {
			return fmt.Errorf("%s: %w", n.Name, err)
		}

		fmt.Fprintf(w, "%s\n", n.Name)

		for _, kp := range config.KeyParams(p) {
			fmt.Fprintf(w, "  %s\t%s\n", kp.Name, kp.Value)
		}
	}

	return w.Flush()
}
