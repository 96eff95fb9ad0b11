package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/simpool/simpool"
	"github.com/simpool/simpool/internal/logflags"
	"github.com/simpool/simpool/tracing"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
)

const version = "0.1.0"

var (
	seed       int64
	journalDir string
	configFile string
	traceFile  string
	verbose    bool
)

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "simpool <script-file> <text-file> <capacity>",
		Short: "simpool simulates a coordinator driving a bounded worker pool.",
		Long: `simpool replays a timestamped command script against a bounded pool of
workers. Scripted spawn/terminate actions manage the pool; at every timestep
one random line of the text file is delivered to one random active worker
through a single shared mailbox, and each worker journals what it received.`,
		Args:         cobra.ExactArgs(3),
		RunE:         runCmd,
		SilenceUsage: true,
	}
	rootCommand.Flags().Int64Var(&seed, "seed", 0, "Random seed; 0 seeds from the wall clock.")
	rootCommand.Flags().StringVar(&journalDir, "journal-dir", ".", "Directory receiving per-worker journal files.")
	rootCommand.Flags().StringVar(&configFile, "config", "", "Optional YAML config; positional arguments override it.")
	rootCommand.Flags().StringVar(&traceFile, "trace", "", "Write OpenTelemetry spans to the specified file.")
	rootCommand.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")

	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("simpool version: " + version)
		},
	}
	rootCommand.AddCommand(versionCommand)
	return rootCommand
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	capacity, err := strconv.Atoi(args[2])
	if err != nil || capacity <= 0 {
		return fmt.Errorf("capacity must be a positive integer, got %q", args[2])
	}

	logflags.Setup(verbose, nil)
	if traceFile != "" {
		if err = tracing.Init("simpool", version, traceFile); err != nil {
			return fmt.Errorf("failed to initialise tracing: %w", err)
		}
	}

	ctx := context.Background()
	options, err := buildOptions(ctx, cmd, afs.New(), args, capacity)
	if err != nil {
		return err
	}

	srv := simpool.New(options...)
	result, err := srv.Runtime().Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("simulation completed: %d timesteps, %d deliveries, %d workers\n",
		result.Timesteps, result.Deliveries, len(result.Workers))
	for _, w := range result.Workers {
		status := "clean exit"
		if w.Err != nil {
			status = fmt.Sprintf("abnormal exit: %v", w.Err)
		}
		fmt.Printf("worker %s (%s, slot %d) -> lines: %d, active: %d - %d = %d steps, %s\n",
			w.Label, w.WorkerID, w.Slot, w.Lines, w.TerminatedAt, w.ActivatedAt, w.ActiveFor(), status)
	}
	return nil
}

// buildOptions assembles the service options. A loaded config file is the
// base; the seed and journal-dir flags override it only when set explicitly,
// while the positional arguments always win.
func buildOptions(ctx context.Context, cmd *cobra.Command, fs afs.Service, args []string, capacity int) ([]simpool.Option, error) {
	options := []simpool.Option{
		simpool.WithScriptURL(args[0]),
		simpool.WithTextURL(args[1]),
		simpool.WithCapacity(capacity),
	}
	if cmd.Flags().Changed("seed") {
		options = append(options, simpool.WithSeed(seed))
	}
	if cmd.Flags().Changed("journal-dir") {
		options = append(options, simpool.WithJournalBaseURL(journalDir))
	}
	if configFile != "" {
		config, err := simpool.LoadConfig(ctx, fs, configFile)
		if err != nil {
			return nil, err
		}
		options = append([]simpool.Option{simpool.WithConfig(config)}, options...)
	}
	return options, nil
}
