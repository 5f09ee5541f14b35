package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fetchforms "github.com/goliatone/go-fetchforms"
	"github.com/goliatone/go-fetchforms/components/echo"
)

func newServeCmd(state *cliState) *cobra.Command {
	var (
		addr     string
		basePath string
		required []string
		noCORS   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the echo backend and the demo page",
		Long: `serve starts the echo backend: GET /test/get echoes its query string and
POST /test/post echoes fields and files. The demo page is served at
/demo.html. Fields listed with --required are reported back as field errors
when empty, which exercises the failure branch of forms.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := []echo.OptionFn{
				echo.WithLogger(state.logger),
				echo.WithCORS(!noCORS),
			}
			if len(required) > 0 {
				opts = append(opts, echo.WithRequired(required...))
			}

			mux := http.NewServeMux()
			patterns, err := echo.New(opts...).RegisterRoutes(mux, basePath)
			if err != nil {
				return err
			}
			mux.Handle("/", http.FileServerFS(fetchforms.AssetsFS()))

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			state.logger.Info("serving", zap.String("addr", addr), zap.Strings("routes", patterns))

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				state.logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":3002", "Listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "", "Path prefix for the echo routes")
	cmd.Flags().StringSliceVar(&required, "required", nil, "Fields reported as required when empty")
	cmd.Flags().BoolVar(&noCORS, "no-cors", false, "Disable the permissive CORS headers")
	return cmd
}
