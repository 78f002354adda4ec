package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	eventbus "github.com/hanpama/gqlcore/internal/eventbus"
	"github.com/hanpama/gqlcore/internal/otel"
	"github.com/hanpama/gqlcore/internal/server"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	addr          string
	dataPath      string
	introspective bool
	timeout       time.Duration
	pretty        bool
	cors          []string
	maxBodyBytes  int64
	parallelism   int
	service       string
}

func newServeCmd(c *cli) *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve static data over the GraphQL HTTP protocol",
		Long: `Serve answers GraphQL requests at /graphql from a root value read from a
JSON or msgpack file. GET and POST requests are accepted, POST bodies may be
batches, and every response carries an X-Request-Id header.

Traces are exported over OTLP/gRPC when --otel-endpoint is set.`,
		Example: `  gqlcore serve --data starwars.json --addr :4000
  gqlcore serve --config gqlcore.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyConfig(cmd, c.config.Serve)
			if !flagChanged(cmd, "otel-service") && c.config.OTel.Service != "" {
				opts.service = c.config.OTel.Service
			}

			bus := eventbus.New()
			eventbus.Use(bus)
			shutdownTracing, err := otel.Setup(cmd.Context(), c.otelEndpoint, opts.service, bus)
			if err != nil {
				return fmt.Errorf("otel setup: %w", err)
			}
			defer func() { _ = shutdownTracing(context.Background()) }()

			h, err := c.newServeHandler(cmd, opts, bus)
			if err != nil {
				return err
			}
			mux := http.NewServeMux()
			mux.Handle("/graphql", h)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return listen(ctx, &http.Server{Addr: opts.addr, Handler: mux})
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().StringVarP(&opts.dataPath, "data", "d", "", "Root value as a .json or .msgpack file")
	cmd.Flags().BoolVar(&opts.introspective, "introspection", true, "Answer __schema and __type fields")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Per-request timeout")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent JSON responses")
	cmd.Flags().StringSliceVar(&opts.cors, "cors", nil, "Allowed CORS origins, * for any")
	cmd.Flags().Int64Var(&opts.maxBodyBytes, "max-body-bytes", 1<<20, "Largest accepted request body")
	cmd.Flags().IntVar(&opts.parallelism, "parallelism", 8, "Async fields resolved concurrently per request")
	cmd.Flags().StringVar(&opts.service, "otel-service", "gqlcore", "OpenTelemetry service name")
	return cmd
}

func (o *serveOptions) applyConfig(cmd *cobra.Command, cfg serveConfig) {
	if !flagChanged(cmd, "addr") && cfg.Addr != "" {
		o.addr = cfg.Addr
	}
	if !flagChanged(cmd, "data") && cfg.Data != "" {
		o.dataPath = cfg.Data
	}
	if !flagChanged(cmd, "introspection") && cfg.Introspection != nil {
		o.introspective = *cfg.Introspection
	}
	if !flagChanged(cmd, "timeout") && cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil {
			o.timeout = d
		}
	}
	if !flagChanged(cmd, "pretty") && cfg.Pretty {
		o.pretty = true
	}
	if !flagChanged(cmd, "cors") && len(cfg.CORS) > 0 {
		o.cors = cfg.CORS
	}
	if !flagChanged(cmd, "max-body-bytes") && cfg.MaxBodyBytes > 0 {
		o.maxBodyBytes = cfg.MaxBodyBytes
	}
}

func (c *cli) newServeHandler(cmd *cobra.Command, opts serveOptions, bus *eventbus.Bus) (*server.Handler, error) {
	sch, err := c.loadSchema(cmd)
	if err != nil {
		return nil, err
	}
	root, err := loadData(opts.dataPath)
	if err != nil {
		return nil, err
	}
	runtime, sch := dataRuntime(sch, opts.parallelism, opts.introspective)

	sopts := []server.Option{
		server.WithRootValue(root),
		server.WithEventBus(bus),
		server.WithTimeout(opts.timeout),
		server.WithMaxBodyBytes(opts.maxBodyBytes),
	}
	if opts.pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if len(opts.cors) > 0 {
		sopts = append(sopts, server.WithCORS(opts.cors...))
	}
	return server.New(runtime, sch, sopts...), nil
}

// listen serves until ctx ends, then drains in-flight requests.
func listen(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		log.Printf("GraphQL server listening on %s", srv.Addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
