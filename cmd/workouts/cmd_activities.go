package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"example.com/workouts/internal/domain"
	"example.com/workouts/internal/query"
)

type positionFlags struct {
	lat, lng           float64
	distance, duration float64
}

func (p *positionFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&p.lat, "lat", 0, "latitude of the activity")
	cmd.Flags().Float64Var(&p.lng, "lng", 0, "longitude of the activity")
	cmd.Flags().Float64Var(&p.distance, "distance", 0, "distance in km")
	cmd.Flags().Float64Var(&p.duration, "duration", 0, "duration in minutes")
	_ = cmd.MarkFlagRequired("distance")
	_ = cmd.MarkFlagRequired("duration")
}

func newLogRunningCmd(a *app) *cobra.Command {
	var p positionFlags
	var cadence float64

	cmd := &cobra.Command{
		Use:   "running",
		Short: "Log a run (distance, duration, cadence)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			activity, err := a.svc.Log(cmd.Context(), domain.CreateRequest{
				Kind:        domain.KindDistance,
				Position:    domain.Position{Lat: p.lat, Lng: p.lng},
				DistanceKm:  p.distance,
				DurationMin: p.duration,
				CadenceSpm:  cadence,
			})
			if err != nil {
				return err
			}
			return a.printActivity(cmd.OutOrStdout(), activity)
		},
	}
	p.register(cmd)
	cmd.Flags().Float64Var(&cadence, "cadence", 0, "cadence in steps per minute")
	_ = cmd.MarkFlagRequired("cadence")
	return cmd
}

func newLogCyclingCmd(a *app) *cobra.Command {
	var p positionFlags
	var elevation float64

	cmd := &cobra.Command{
		Use:   "cycling",
		Short: "Log a ride (distance, duration, elevation gain)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			activity, err := a.svc.Log(cmd.Context(), domain.CreateRequest{
				Kind:           domain.KindElevation,
				Position:       domain.Position{Lat: p.lat, Lng: p.lng},
				DistanceKm:     p.distance,
				DurationMin:    p.duration,
				ElevationGainM: elevation,
			})
			if err != nil {
				return err
			}
			return a.printActivity(cmd.OutOrStdout(), activity)
		},
	}
	p.register(cmd)
	cmd.Flags().Float64Var(&elevation, "elevation", 0, "elevation gain in metres")
	_ = cmd.MarkFlagRequired("elevation")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var sortBy, direction string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List activities, optionally sorted by a metric",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sortBy == "" {
				return a.printActivities(cmd.OutOrStdout(), a.svc.List())
			}
			metric, err := domain.ParseMetric(sortBy)
			if err != nil {
				return err
			}
			dir, ok := query.ParseDirection(direction)
			if !ok {
				return fmt.Errorf("unknown direction %q (want ascending or insertion)", direction)
			}
			return a.printActivities(cmd.OutOrStdout(), a.svc.Sorted(metric, dir))
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "", fmt.Sprintf("metric to sort by %v", domain.Metrics))
	cmd.Flags().StringVar(&direction, "direction", string(query.Ascending), "ascending or insertion")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			activity, err := a.svc.Get(args[0])
			if err != nil {
				return err
			}
			return a.printActivity(cmd.OutOrStdout(), activity)
		},
	}
}

func newVisitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "visit <id>",
		Short: "Record that an activity was opened on the map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			activity, err := a.svc.Visit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printActivity(cmd.OutOrStdout(), activity)
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var distance, duration, value float64

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change distance, duration, or the cadence/elevation of an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.Patch
			if cmd.Flags().Changed("distance") {
				patch.DistanceKm = &distance
			}
			if cmd.Flags().Changed("duration") {
				patch.DurationMin = &duration
			}
			if cmd.Flags().Changed("value") {
				patch.CadenceSpm, patch.ElevationGainM = &value, &value
			}

			activity, err := a.svc.Patch(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return a.printActivity(cmd.OutOrStdout(), activity)
		},
	}
	cmd.Flags().Float64Var(&distance, "distance", 0, "new distance in km")
	cmd.Flags().Float64Var(&duration, "duration", 0, "new duration in minutes")
	cmd.Flags().Float64Var(&value, "value", 0, "new cadence (running) or elevation gain (cycling)")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete one activity",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.svc.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s (%s)\n", removed.ID, removed.Label)
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every activity in the slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear slot %q without --yes", a.cfg.SlotKey)
			}
			removed, err := a.svc.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d activities\n", removed)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

func newBoundsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bounds",
		Short: "Print the map extent covering every activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.svc.Bounds()
			if err != nil {
				return err
			}
			return a.printBounds(cmd.OutOrStdout(), b)
		},
	}
}
