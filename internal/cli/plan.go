package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/brollcut/internal/domain/assets"
	"github.com/forPelevin/brollcut/internal/domain/planner"
	"github.com/forPelevin/brollcut/internal/domain/schedule"
	"github.com/forPelevin/brollcut/internal/planfile"
	"github.com/forPelevin/brollcut/internal/types"
)

// newPlanCommand plans a saved candidate list offline, without touching any
// media or model.
func newPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Validate, resolve and adjust a saved candidate list",
		Args:  cobra.NoArgs,
		RunE:  runPlan,
	}
	cmd.Flags().String("candidates", "", "Candidate file (JSON or YAML)")
	cmd.Flags().String("assets", "", "Asset file (JSON or YAML)")
	cmd.Flags().Int("width", 1920, "Canvas width")
	cmd.Flags().Int("height", 1080, "Canvas height")
	cmd.Flags().String("base", "", "A-roll path recorded in the composition")
	cmd.Flags().String("format", "json", "Output format: json, yaml or table")
	cmd.Flags().Bool("composition", false, "Print the full composition as JSON instead of the plan")
	_ = cmd.MarkFlagRequired("candidates")
	_ = cmd.MarkFlagRequired("assets")
	return cmd
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	if width <= 0 || height <= 0 {
		return fmt.Errorf("canvas must be positive, got %dx%d", width, height)
	}
	canvas := types.Size{Width: width, Height: height}

	candPath, _ := cmd.Flags().GetString("candidates")
	assetPath, _ := cmd.Flags().GetString("assets")
	raw, err := planfile.LoadCandidates(candPath)
	if err != nil {
		return err
	}
	list, err := planfile.LoadAssets(assetPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	reg := assets.NewRegistry(log)
	for _, a := range list {
		if a.Canvas == (types.Size{}) {
			a.Canvas = canvas
		}
		reg.Register(a)
	}

	base, _ := cmd.Flags().GetString("base")
	pcfg := planner.DefaultConfig(types.Track{Path: base, Size: canvas})
	pcfg.Bounds = schedule.Bounds{MinDur: cfg.Planning.MinDurationSec, MaxDur: cfg.Planning.MaxDurationSec}
	pcfg.FadeSec = cfg.Planning.FadeSec
	pcfg.Logger = log

	comp, rejected, err := planner.PlanReport(raw, reg, pcfg)
	if err != nil {
		return err
	}
	if full, _ := cmd.Flags().GetBool("composition"); full {
		return writeCompositionJSON(cmd, comp)
	}
	return printPlan(cmd.OutOrStdout(), format, comp, rejected)
}
