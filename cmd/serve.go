package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/folio/internal/contact"
	"github.com/ziadkadry99/folio/internal/server"
	"github.com/ziadkadry99/folio/internal/ui"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portfolio web server",
	Long:  `Serves the portfolio page, its content and the WebSocket sessions that drive it, plus the contact and preferences APIs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		fsys, err := openContent(cfg, "")
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		// Without an endpoint, messages land in the local database.
		var channel contact.Channel
		if cfg.Contact.Endpoint != "" {
			channel = contact.NewHTTPChannel(cfg.Contact.Endpoint, nil, cfg.Contact.Timeout, nil)
		}

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: cfg.AllowAllOrigins,
			Watch: ui.WatchOptions{
				RootMargin: cfg.LazyLoad.RootMargin,
				Threshold:  cfg.LazyLoad.Threshold,
			},
			MessageTTL: cfg.Contact.MessageTTL,
		}, database, fsys, channel)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "folio server v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", database.Path())
		if verbose {
			contentDir := cfg.ContentDir
			if contentDir == "" {
				contentDir = "(bundled)"
			}
			fmt.Fprintf(os.Stderr, "  Content: %s\n", contentDir)
			if cfg.Contact.Endpoint != "" {
				fmt.Fprintf(os.Stderr, "  Contact endpoint: %s\n", cfg.Contact.Endpoint)
			} else {
				fmt.Fprintf(os.Stderr, "  Contact messages: stored locally\n")
			}
		}

		err = srv.Start()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
