package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/standardbeagle/mapperlink/internal/debug"
	"github.com/standardbeagle/mapperlink/internal/indexing"
	"github.com/standardbeagle/mapperlink/internal/mcp"

	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 10 * time.Second

// watchCommand indexes the workspace, keeps it current through file system
// events and optionally serves Prometheus metrics until interrupted
func watchCommand(c *cli.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	sess.cfg.Index.WatchMode = true

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := c.String("metrics-addr"); addr != "" {
		shutdown, err := serveMetrics(c, sess, addr)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	idx := sess.open()
	if err := idx.EnsureInitialized(ctx); err != nil {
		return err
	}
	stats := idx.Stats()
	fmt.Fprintf(c.App.Writer, "Watching %s: %d XML mappers, %d Java mappers\n",
		sess.cfg.Project.Root, stats.XMLDocuments, stats.JavaDocuments)

	interval := c.Duration("report-interval")
	if interval <= 0 {
		<-ctx.Done()
		fmt.Fprintln(c.App.Writer, "Stopping watcher")
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.App.Writer, "Stopping watcher")
			return nil
		case <-ticker.C:
			current := idx.Stats()
			if documentsChanged(stats, current) {
				fmt.Fprintf(c.App.Writer, "Updated: %d XML mappers (%d statements), %d Java mappers (%d methods)\n",
					current.XMLDocuments, current.Statements, current.JavaDocuments, current.Methods)
				stats = current
			}
		}
	}
}

func documentsChanged(before, after indexing.IndexStats) bool {
	return before.XMLDocuments != after.XMLDocuments ||
		before.JavaDocuments != after.JavaDocuments ||
		before.Statements != after.Statements ||
		before.Methods != after.Methods
}

// serveMetrics exposes the session's registry on addr/metrics. The returned
// func stops the server and waits for it.
func serveMetrics(c *cli.Context, sess *session, addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", sess.metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			debug.LogIndexing("metrics server: %v\n", err)
		}
	}()
	fmt.Fprintf(c.App.Writer, "Serving metrics on http://%s/metrics\n", ln.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	}, nil
}

// mcpCommand serves the index over MCP on stdio
func mcpCommand(c *cli.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	server, err := mcp.NewServer(sess.open(), sess.cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	// index warnings would otherwise land on stderr next to the protocol
	log.SetOutput(server.DiagnosticLog().Writer())
	defer log.SetOutput(os.Stderr)
	debug.LogMCP("diagnostics in %s\n", server.DiagnosticLog().GetLogPath())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
