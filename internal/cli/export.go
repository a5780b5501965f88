package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"devicemap/internal/codec"
)

func newExportCmd() *cobra.Command {
	var (
		format string
		output string
		graph  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an inventory snapshot or the graph payload",
		Long:  "Reads the database named by the config and writes every device, connection type and connection as JSON or YAML. With --graph the /data node/edge payload is written instead.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := stateFrom(cmd.Context())

			exporter, err := codec.ForFormat(format)
			if err != nil {
				return err
			}

			a, err := openApp(s.cfg, s.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if graph {
				g, err := a.svc.Graph.Export(cmd.Context())
				if err != nil {
					return err
				}
				return writeGraph(w, exporter.Format(), g)
			}

			inv, err := a.svc.Graph.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if err := exporter.Export(inv, w); err != nil {
				return err
			}
			s.logger.Debug("exported inventory",
				zap.String("format", exporter.Format()),
				zap.Int("devices", len(inv.Devices)),
				zap.Int("connections", len(inv.Connections)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	cmd.Flags().BoolVar(&graph, "graph", false, "write the vis-network nodes/edges payload")

	return cmd
}
