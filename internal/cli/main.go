package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCommand()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "brollcut <a-roll> <b-roll>...",
		Short:         "Place B-roll clips over an A-roll narration and render the composite",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], args[1:])
		},
	}

	// Visible flags
	root.Flags().String("out", "", "Output directory (default from config, \"out\")")
	root.Flags().Bool("render", false, "Render output.mp4 (plan only when unset)")
	root.Flags().Bool("burn-subtitles", false, "Write captions.ass and burn it into the render")
	root.Flags().String("format", "json", "Plan output format: json, yaml or table")
	root.PersistentFlags().String("config", "", "Path to brollcut.toml")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	// Hidden tuning flags (internal)
	root.Flags().Float64("min-dur", 0, "Min insertion duration seconds")
	root.Flags().Float64("max-dur", 0, "Max insertion duration seconds")
	_ = root.Flags().MarkHidden("min-dur")
	_ = root.Flags().MarkHidden("max-dur")

	root.AddCommand(newPlanCommand(), newSampleConfigCommand())
	return root
}
