package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"example.com/workouts/internal/domain"
	"example.com/workouts/internal/events"
	"example.com/workouts/internal/query"
	"example.com/workouts/internal/service"
)

func (a *app) printActivity(w io.Writer, activity domain.Activity) error {
	if a.asJSON {
		return writeJSON(w, service.FeedItem(activity))
	}
	return writeTable(w, []events.Activity{service.FeedItem(activity)})
}

func (a *app) printActivities(w io.Writer, activities []domain.Activity) error {
	items := make([]events.Activity, 0, len(activities))
	for _, activity := range activities {
		items = append(items, service.FeedItem(activity))
	}
	if a.asJSON {
		return writeJSON(w, items)
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no activities")
		return err
	}
	return writeTable(w, items)
}

func (a *app) printBounds(w io.Writer, b query.Bounds) error {
	if a.asJSON {
		return writeJSON(w, map[string]float64{
			"minLat": b.MinLat, "maxLat": b.MaxLat,
			"minLng": b.MinLng, "maxLng": b.MaxLng,
		})
	}
	_, err := fmt.Fprintf(w, "lat %.5f .. %.5f\nlng %.5f .. %.5f\n", b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
	return err
}

func writeTable(w io.Writer, items []events.Activity) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tKM\tMIN\tDERIVED\tVISITS")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.1f\t%s\t%d\n",
			item.ActivityID, item.Label, item.DistanceKm, item.DurationMin, derived(item), item.InteractionCount)
	}
	return tw.Flush()
}

func derived(item events.Activity) string {
	if item.DerivedValue == nil {
		return "-"
	}
	switch domain.Metric(item.DerivedMetric) {
	case domain.MetricPaceMinPerKm:
		return fmt.Sprintf("%.1f min/km", *item.DerivedValue)
	case domain.MetricSpeedKmPerH:
		return fmt.Sprintf("%.1f km/h", *item.DerivedValue)
	}
	return fmt.Sprintf("%.1f", *item.DerivedValue)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
