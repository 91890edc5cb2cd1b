package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/propriosim/datarecording"
	"github.com/sarchlab/propriosim/tracing"
)

var traceCmd = &cobra.Command{
	Use:   "trace DATABASE",
	Short: "Read a recorded trace.",
	Long: "`trace DATABASE` lists the tables of a recorded trace. With " +
		"--table, it prints the records of the table, one JSON object per line.",
	Args: cobra.ExactArgs(1),
	RunE: readTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)

	traceCmd.Flags().String("table", "",
		"Table to print: transactions, syncs, mem_accesses, or errors.")
	traceCmd.Flags().String("where", "",
		"SQL condition on the records, for example \"Component = 'Node.SAE'\".")
	traceCmd.Flags().String("order-by", "Time", "Column to sort by.")
	traceCmd.Flags().Int("limit", 100, "Maximum number of records. 0 for all.")
	traceCmd.Flags().Int("offset", 0, "Number of records to skip.")
}

func readTrace(cmd *cobra.Command, args []string) error {
	reader, err := datarecording.NewReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	tracing.MapTables(reader)

	ctx := context.Background()
	out := cmd.OutOrStdout()

	table, _ := cmd.Flags().GetString("table")
	if table == "" {
		tables, err := reader.StoredTables(ctx)
		if err != nil {
			return err
		}

		for _, t := range tables {
			fmt.Fprintln(out, t)
		}

		return nil
	}

	params := datarecording.QueryParams{}
	params.Where, _ = cmd.Flags().GetString("where")
	params.OrderBy, _ = cmd.Flags().GetString("order-by")
	params.Limit, _ = cmd.Flags().GetInt("limit")
	params.Offset, _ = cmd.Flags().GetInt("offset")

	records, total, err := reader.Query(ctx, table, params)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d records\n", len(records), total)

	return nil
}
