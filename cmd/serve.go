package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/piscinadeentropia/mrquizzer/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the current quiz over HTTP and websocket",
	Long: `Serve exposes the current quiz session as a JSON API for web and mobile
front ends. Every client shares the same session; state changes are pushed
to clients connected to /api/ws.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		addr := rt.cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := server.New(ctx, server.Deps{
			Library:  rt.lib,
			Progress: rt.progress,
			Events:   rt.store.EventRepo(),
		}, server.Options{
			CORSOrigins:   rt.cfg.Server.CORSOrigins,
			AutosaveEvery: rt.cfg.Play.AutosaveSeconds,
			Prompt:        rt.cfg.Prompt,
			Logger:        slog.Default().With("component", "server"),
		})
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		httpSrv := newHTTPServer(ctx, srv.Handler())

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			slog.Info("listening", "addr", ln.Addr().String())
			if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			// Shutdown does not wait for hijacked websocket connections.
			saveErr := srv.Shutdown(shutdownCtx)
			return errors.Join(httpSrv.Shutdown(shutdownCtx), saveErr)
		})
		return g.Wait()
	},
}

// newHTTPServer serves h with request contexts derived from ctx. They keep
// its values but not its cancellation, so requests still running when a
// signal arrives can save before Shutdown drains them.
func newHTTPServer(ctx context.Context, h http.Handler) *http.Server {
	base := context.WithoutCancel(ctx)
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:8080)")
}
