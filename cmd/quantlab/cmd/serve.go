package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/quantlab/decision"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve live trading decisions over HTTP",
	Long: `Serve starts the stateless decision service:

  POST /bot/strategy  - market snapshot in, BUY/SELL/HOLD out
  GET  /              - HTML dashboard of recent decisions
  POST /bot/start     - start the configured feeder process
  POST /bot/stop      - stop the feeder process
  GET  /healthz       - liveness

Example:
  quantlab serve --addr :8080 --feeder "quantlab" --feeder-args "replay,--bars,data/es_1m.csv"`,
	RunE: runServe,
}

var (
	serveAddr       string
	serveKeep       int
	serveFeeder     string
	serveFeederArgs []string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "listen address")
	serveCmd.Flags().IntVar(&serveKeep, "keep", 1000, "decision log size for the dashboard")
	serveCmd.Flags().StringVar(&serveFeeder, "feeder", "", "feeder command for /bot/start (empty disables)")
	serveCmd.Flags().StringSliceVar(&serveFeederArgs, "feeder-args", nil, "arguments for the feeder command")
}

func runServe(cmd *cobra.Command, args []string) error {
	var ctl *decision.Controller
	if serveFeeder != "" {
		ctl = decision.NewController(serveFeeder, serveFeederArgs...)
	}

	srv := decision.NewServer(decision.NewRecorder(serveKeep), ctl, nil)
	return srv.ListenAndServe(serveAddr)
}
