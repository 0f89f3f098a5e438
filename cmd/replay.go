package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evdash/core/telemetry"
	"github.com/kilianp07/evdash/infra/serial"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Feed a file of serial records through the ingestion adapter",
	Long: "replay reads timestamp;speed;temperature;voltage;wh records from a file, applies\n" +
		"the same decoding as a live serial device and prints each resulting snapshot as JSON.",
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

// printPublisher stores each snapshot and writes it as one JSON line.
type printPublisher struct {
	hub *telemetry.Hub
	enc *json.Encoder
}

func (p printPublisher) Publish(s telemetry.Snapshot) int {
	n := p.hub.Publish(s)
	_ = p.enc.Encode(s)
	return n
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	stats, err := replay(cmd.Context(), f, cmd.OutOrStdout(), cfg.Source.Serial)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "%d records accepted, %d dropped\n", stats.Accepted, stats.Dropped)
	return err
}

func replay(ctx context.Context, r io.ReadCloser, out io.Writer, sc serial.Config) (serial.Stats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	hub := telemetry.NewHub(telemetry.NewStore(telemetry.Initial()), 0)
	defer hub.Close()
	pub := printPublisher{hub: hub, enc: json.NewEncoder(out)}
	a := serial.NewAdapter(sc, nil, pub, hub.Store(), nil, nil)
	return a.Ingest(ctx, r)
}
