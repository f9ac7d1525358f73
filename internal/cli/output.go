package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/brollcut/internal/domain/schedule"
	"github.com/forPelevin/brollcut/internal/planfile"
	"github.com/forPelevin/brollcut/internal/types"
)

const formatTable = "table"

func checkFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case planfile.FormatJSON, planfile.FormatYAML, formatTable:
		return nil
	}
	return fmt.Errorf("unsupported --format %q (want json, yaml or table)", format)
}

// printPlan writes the plan in format. The table form also lists rejected
// candidates when there are any.
func printPlan(w io.Writer, format string, comp types.Composition, rejected []schedule.Rejection) error {
	if !strings.EqualFold(strings.TrimSpace(format), formatTable) {
		return planfile.Encode(w, format, comp.Plan())
	}
	if len(comp.Overlays) == 0 {
		if _, err := fmt.Fprintln(w, "no insertions planned"); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintln(w, overlayTable(comp.Overlays)); err != nil {
		return err
	}
	if len(rejected) > 0 {
		if _, err := fmt.Fprintf(w, "rejected candidates:\n%s\n", rejectionTable(rejected)); err != nil {
			return err
		}
	}
	return nil
}

func rejectionTable(rejected []schedule.Rejection) string {
	rows := make([][]string, 0, len(rejected))
	for _, r := range rejected {
		rows = append(rows, []string{strconv.Itoa(r.Index), r.BRollID, string(r.Reason)})
	}
	return renderTable(
		[]string{"Input #", "Clip", "Reason"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	)
}

func overlayTable(overlays []types.Overlay) string {
	headers := []string{"#", "Start", "End", "Clip", "Mode", "Conf", "Reason"}
	aligns := []columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft}
	rows := make([][]string, 0, len(overlays))
	for i, ov := range overlays {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			fmtSec(ov.StartSec),
			fmtSec(ov.EndSec()),
			ov.Insertion.BRollID,
			string(ov.Mode),
			strconv.FormatFloat(ov.Insertion.Confidence, 'f', 2, 64),
			ov.Insertion.Reason,
		})
	}
	return renderTable(headers, rows, aligns)
}

func fmtSec(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "s"
}

func writeCompositionJSON(cmd *cobra.Command, comp types.Composition) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(comp)
}
