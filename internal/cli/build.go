package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export the site as static files",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			applyConfigFlagOverrides(cmd, app.Cfg, map[string]string{"out": "export.out_dir"})
			srv, err := app.Server(cmd.Context())
			if err != nil {
				return err
			}
			live, err := app.Live(cmd.Context())
			if err != nil {
				return err
			}
			out := app.Cfg.GetString("export.out_dir")
			if err := srv.Export(cmd.Context(), out); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d posts)\n", out, live.Site().Posts.Len())
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "output directory (override config export.out_dir)")
	return cmd
}
