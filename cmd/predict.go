package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/registry"
)

var predictCmd = &cobra.Command{
	Use:   "predict [asset-id...]",
	Short: "Replay a fixture and print the prediction of each asset",
	RunE:  runPredict,
}

func init() {
	addFixtureFlag(predictCmd)
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	r, err := loadReplay(cmd)
	if err != nil {
		return err
	}
	defer r.stop()

	ids := args
	if len(ids) == 0 {
		for _, p := range r.engine.Registry().List(registry.Filter{}) {
			ids = append(ids, p.ID)
		}
	}
	results := make([]model.PredictionResult, 0, len(ids))
	for _, id := range ids {
		res, err := r.engine.Predict(id)
		if err != nil {
			return err
		}
		results = append(results, res)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
