package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/laborboard/internal/infrastructure/config"
	"github.com/felixgeelhaar/laborboard/internal/infrastructure/watch"
	"github.com/felixgeelhaar/laborboard/pkg/infrastructure/dashboard"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live board in the browser",
	Long: `Serve the web dashboard. Browsers receive a fresh summary every refresh
interval and whenever a shift or center changes, including edits made by other
laborboard processes against the same data directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		ws := services.Workspace
		addr := ws.Config.Dashboard.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		server, err := dashboard.NewServer(addr, services.Labor,
			dashboard.WithPublisher(ws.Publisher),
			dashboard.WithDisplays(services.Displays),
			dashboard.WithRefresh(ws.Config.RefreshInterval()),
			dashboard.WithLogger(ws.Logger),
		)
		if err != nil {
			return fmt.Errorf("failed to create dashboard: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if !serveNoWatch && ws.Config.Storage.Driver != config.DriverMemory {
			w, err := watch.NewFSWatcher(ws.DataDir(), 0, watch.PublishChanges(ws.Publisher))
			if err != nil {
				return fmt.Errorf("failed to watch data directory: %w", err)
			}
			go func() {
				if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					ws.Logger.Warn("data directory watcher stopped", "error", err)
				}
			}()
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Serving laborboard on http://%s (Ctrl+C to stop)\n", displayAddr(addr))
		return server.Start(ctx)
	},
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: dashboard.addr from config)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Do not reload on external changes to the data files")
	RootCmd.AddCommand(serveCmd)
}
