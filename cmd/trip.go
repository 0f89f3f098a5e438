package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/evdash/core/sim"
	"github.com/kilianp07/evdash/core/telemetry"
	"github.com/kilianp07/evdash/pkg/export"
)

var (
	tripCount  int
	tripSeed   int64
	tripFormat string
)

var tripCmd = &cobra.Command{
	Use:   "trip",
	Short: "Simulate trips without pacing and print their summaries",
	RunE:  runTrip,
}

func init() {
	tripCmd.Flags().IntVarP(&tripCount, "trips", "n", 1, "number of trips to simulate")
	tripCmd.Flags().Int64Var(&tripSeed, "seed", 0, "random seed (0 uses simulation.seed)")
	tripCmd.Flags().StringVar(&tripFormat, "format", "table", "output format: table, json or csv")
	rootCmd.AddCommand(tripCmd)
}

// speedRecorder groups published speeds by trip. A new trip starts when the
// timestamp goes backwards.
type speedRecorder struct {
	trips [][]float64
	last  float64
}

func (r *speedRecorder) Publish(s telemetry.Snapshot) int {
	if len(r.trips) == 0 || s.Timestamp < r.last {
		r.trips = append(r.trips, nil)
	}
	r.last = s.Timestamp
	i := len(r.trips) - 1
	r.trips[i] = append(r.trips[i], s.Speed)
	return 0
}

// SpeedStats summarises the speed samples of one trip.
type SpeedStats struct {
	Mean, StdDev, Max float64
}

func speedStats(speeds []float64) SpeedStats {
	if len(speeds) == 0 {
		return SpeedStats{}
	}
	mean, std := stat.MeanStdDev(speeds, nil)
	return SpeedStats{Mean: mean, StdDev: std, Max: floats.Max(speeds)}
}

func runTrip(cmd *cobra.Command, args []string) error {
	if tripCount <= 0 {
		return fmt.Errorf("--trips must be positive")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	seed := tripSeed
	if seed == 0 {
		seed = cfg.Simulation.SeedValue()
	}
	p := cfg.Simulation.Params()
	p.Realtime = false
	p.ResetPause = 0
	rows, err := simulateTrips(ctx, p, seed, tripCount)
	if err != nil {
		return err
	}
	if tripFormat == "table" {
		return writeTable(cmd.OutOrStdout(), seed, rows)
	}
	return export.Write(cmd.OutOrStdout(), tripFormat, rows)
}

func simulateTrips(ctx context.Context, p sim.Params, seed int64, n int) ([]export.TripRow, error) {
	rec := &speedRecorder{}
	eng := sim.NewEngine(p, rand.New(rand.NewSource(seed)), rec)
	sums, err := eng.RunTrips(ctx, n)
	if err != nil {
		return nil, err
	}
	rows := make([]export.TripRow, len(sums))
	for i, s := range sums {
		var st SpeedStats
		if i < len(rec.trips) {
			st = speedStats(rec.trips[i])
		}
		rows[i] = export.TripRow{
			Trip:           i + 1,
			DistanceKm:     s.DistanceKm,
			EnergyUsedWh:   s.EnergyUsedWh,
			EfficiencyWhKm: s.EfficiencyWhKm,
			DurationS:      s.DurationS,
			MeanSpeed:      st.Mean,
			StdDevSpeed:    st.StdDev,
			MaxSpeed:       st.Max,
		}
	}
	return rows, nil
}

func writeTable(out io.Writer, seed int64, rows []export.TripRow) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "seed %d\n", seed)
	fmt.Fprintln(tw, "trip\tdistance_km\tenergy_wh\twh_per_km\tduration_s\tmean_kmh\tstddev_kmh\tmax_kmh")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%.2f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\n",
			r.Trip, r.DistanceKm, r.EnergyUsedWh, r.EfficiencyWhKm, r.DurationS, r.MeanSpeed, r.StdDevSpeed, r.MaxSpeed)
	}
	return tw.Flush()
}
