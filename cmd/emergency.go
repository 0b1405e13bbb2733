package cmd

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

var emergencyCmd = &cobra.Command{
	Use:   "emergency",
	Short: "Route the fixture's emergency vehicles and print the resulting plan",
	RunE:  runEmergency,
}

func init() {
	addFixtureFlag(emergencyCmd)
	rootCmd.AddCommand(emergencyCmd)
}

func runEmergency(cmd *cobra.Command, args []string) error {
	r, err := loadReplay(cmd)
	if err != nil {
		return err
	}
	defer r.stop()

	if len(r.fixture.Emergency) == 0 {
		return errors.New("fixture has no emergency vehicles")
	}
	routes, err := r.engine.HandleEmergencyVehicles(cmd.Context(), r.fixture.Emergency)
	if err != nil {
		return err
	}
	out := struct {
		Routes []model.EmergencyRoute `json:"routes"`
		Plan   *model.TrafficPlan     `json:"plan,omitempty"`
	}{Routes: routes}
	if plan, ok := r.engine.LastPlan(); ok {
		out.Plan = &plan
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
