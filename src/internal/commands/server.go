package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/echoreply/ifconf/src/internal/api"
	"github.com/echoreply/ifconf/src/internal/log"
)

const shutdownTimeout = 30 * time.Second

func newServerCommand(app *AppContext) *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the read-only op-mode HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, deps, err := app.load()
			if err != nil {
				return err
			}
			if listenAddr == "" {
				listenAddr = cfg.API.ListenAddr
			}

			log.Infof("Configuration loaded from: %s", cfg.Path())
			log.Infof("Access restricted to private, CGNAT and loopback addresses")

			server := api.NewServer(listenAddr, deps)
			serverErrors := make(chan error, 1)
			go func() {
				serverErrors <- server.Start()
			}()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			select {
			case err := <-serverErrors:
				return err
			case <-ctx.Done():
				log.Infof("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Stop(shutdownCtx); err != nil {
					log.Errorf("Error during server shutdown: %v", err)
					return err
				}
				log.Infof("Server stopped gracefully")
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default: api.listen_addr from the configuration)")
	return cmd
}
