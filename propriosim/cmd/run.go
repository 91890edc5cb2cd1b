package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/propriosim/config"
	"github.com/sarchlab/propriosim/node"
	"github.com/sarchlab/propriosim/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation.",
	Long: "`run` builds the nodes of the topology and runs them until the " +
		"stimulus is exhausted or the time limit is reached.",
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("until", "",
		"Simulation time limit, for example 500ms. Overrides the topology.")
	runCmd.Flags().String("stimulus", "",
		"Stimulus file. Overrides the topology and the environment.")
	runCmd.Flags().Bool("monitor", false, "Serve the monitoring API.")
	runCmd.Flags().Int("monitor-port", 0,
		"Port of the monitoring API. A random port is used when 0.")
	runCmd.Flags().Bool("open-monitor", false,
		"Open the monitoring API in a browser. Implies --monitor.")
	runCmd.Flags().String("db", "",
		"Name of the trace database, without the .sqlite3 extension.")
	runCmd.Flags().Bool("no-record", false, "Do not record traces.")
	runCmd.Flags().Bool("log-trace", false, "Print every trace record.")
	runCmd.Flags().Bool("log-events", false, "Print every simulation event.")
	runCmd.Flags().BoolP("verbose", "v", false,
		"Print the monitor reports and the executed actions.")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if until, _ := cmd.Flags().GetString("until"); until != "" {
		c.Until = until
	}

	if file, _ := cmd.Flags().GetString("stimulus"); file != "" {
		c.Stimulus.File = file
	}

	s, err := buildSimulation(cmd)
	if err != nil {
		return err
	}
	defer s.Terminate()

	a, err := c.Assemble(s, buildHooks(cmd))
	if err != nil {
		return err
	}

	if open, _ := cmd.Flags().GetBool("open-monitor"); open {
		if err := browser.OpenURL(s.GetMonitor().URL()); err != nil {
			log.Printf("cannot open the monitor: %v", err)
		}
	}

	runErr := a.Run()

	printSummary(cmd, a, s)

	return runErr
}

func buildSimulation(cmd *cobra.Command) (*simulation.Simulation, error) {
	flags := cmd.Flags()
	b := simulation.MakeBuilder()

	noRecord, _ := flags.GetBool("no-record")
	db, _ := flags.GetString("db")

	switch {
	case noRecord && db != "":
		return nil, fmt.Errorf("--db cannot be used with --no-record")
	case noRecord:
		b = b.WithoutRecording()
	case db != "":
		b = b.WithOutputFileName(db)
	}

	monitor, _ := flags.GetBool("monitor")
	open, _ := flags.GetBool("open-monitor")
	port, _ := flags.GetInt("monitor-port")

	if monitor || open {
		b = b.WithMonitoring().WithMonitorPort(port)
	} else if port != 0 {
		return nil, fmt.Errorf("--monitor-port needs --monitor")
	}

	if logTrace, _ := flags.GetBool("log-trace"); logTrace {
		b = b.WithLogTracer(log.New(os.Stderr, "", 0))
	}

	if logEvents, _ := flags.GetBool("log-events"); logEvents {
		b = b.WithEventLogger(log.New(os.Stderr, "", 0))
	}

	return b.Build(), nil
}

func buildHooks(cmd *cobra.Command) node.Hooks {
	hooks := node.DefaultHooks()

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger := log.New(cmd.OutOrStdout(), "", 0)
		hooks.Reporter = node.LogReporter{Logger: logger}
		hooks.Executor = node.LogExecutor{Logger: logger}
	}

	return hooks
}

func printSummary(
	cmd *cobra.Command,
	a *config.Assembly,
	s *simulation.Simulation,
) {
	out := cmd.OutOrStdout()
	now := s.GetEngine().CurrentTime()

	fmt.Fprintf(out, "simulation ended at %s\n", now)

	if reason := s.StopReason(); reason != nil {
		fmt.Fprintf(out, "stopped: %v\n", reason)
	}

	for _, n := range a.Nodes {
		fmt.Fprintf(out, "%s: LModel %s, SEE %s, %d C1 cycles, %d D cycles\n",
			n.Name(), n.LModel.Status(), n.SEE.Status(),
			n.LModel.ReaderProcess().Cycles(), n.SEE.Process().Cycles())
	}

	if a.Feeder != nil {
		fmt.Fprintf(out, "stimulus: %d of %d values fed, %d writes dropped\n",
			a.Feeder.NumFed(), a.Feeder.NumValues(), a.Feeder.NumFull())
	}

	if a.Until > 0 && now < a.Until {
		fmt.Fprintf(out, "time limit %s not reached\n", a.Until)
	}
}
