// Package export writes maintenance reports for downstream tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/scheduler"
)

// WriteJSON writes the full report to w in JSON format.
func WriteJSON(w io.Writer, rep scheduler.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteCSV writes the recommendations to w, one row per task, for work
// order systems.
func WriteCSV(w io.Writer, recs []scheduler.Recommendation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"task_id", "asset_id", "kind", "tier", "priority", "window_start", "window_end", "impact", "cost"}); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			r.TaskID,
			r.AssetID,
			string(r.Kind),
			r.Tier.String(),
			strconv.Itoa(r.Priority),
			r.Window.Start.Format(time.RFC3339),
			r.Window.End.Format(time.RFC3339),
			r.Impact.Severity.String(),
			strconv.FormatFloat(r.Cost, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
