package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mithrel/homepage/internal/config"
	"github.com/mithrel/homepage/internal/content"
)

func newServeCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			applyConfigFlagOverrides(cmd, app.Cfg, map[string]string{"listen": "http_addr"})
			if err := config.CheckConfigValidity(app.Cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := app.Server(ctx)
			if err != nil {
				return err
			}
			if watch {
				dir := config.ResolveContentDir(app.Cfg)
				if dir == "" || config.ContentSource(app.Cfg) != config.SourceFiles {
					return errors.New("--watch needs content_dir with content.source = \"files\"")
				}
				live, err := app.Live(ctx)
				if err != nil {
					return err
				}
				go func() {
					if err := content.Watch(ctx, dir, live, app.Log); err != nil {
						app.Log.Printf("watch stopped err=%v", err)
					}
				}()
			}
			addr := app.Cfg.GetString("http_addr")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\n", app.Cfg.GetString("site.title"), addr)
			return srv.Serve(ctx, addr)
		},
	}
	cmd.Flags().String("listen", "", "listen address (override config http_addr)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload content_dir on change")
	return cmd
}
