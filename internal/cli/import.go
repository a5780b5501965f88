package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"devicemap/internal/loader"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Apply a YAML seed file of connection types, devices and connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := stateFrom(cmd.Context())

			seed, err := loader.LoadFile(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(s.cfg, s.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := loader.Apply(cmd.Context(), a.svc, seed)
			if result != nil {
				s.logger.Info("seed applied",
					zap.String("file", args[0]),
					zap.Int("devices_created", result.DevicesCreated),
					zap.Int("connections_created", result.ConnectionsCreated))
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
