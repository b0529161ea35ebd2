package extract

import (
	"fmt"

	"cardx/utils/debug"
)

// Dump returns readable listing of runs for debug report.
func Dump(runs []Run) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Runs (%d)", len(runs))
	for i, r := range runs {
		tw.TextBlock(1, fmt.Sprintf("%03d %s", i, r.Tag), r.Text)
	}
	return tw.String()
}
