// Command idcl extracts and converts resources from IDCL game containers.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/meigma/idcl"
	"github.com/meigma/idcl/cache/disk"
	idclhttp "github.com/meigma/idcl/http"
	"github.com/meigma/idcl/internal/sizing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "idcl:", err)
		code := 1
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			code = exit.ExitCode()
		}
		stop()
		os.Exit(code)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "idcl",
		Usage: "extract and convert resources from IDCL containers",
		// Exit codes are handled in main.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn, or error",
				Value:   "warn",
				EnvVars: []string{"IDCL_LOG_LEVEL"},
			},
			&cli.PathFlag{
				Name:    "cache-dir",
				Usage:   "cache decompressed entries in `DIR`",
				EnvVars: []string{"IDCL_CACHE_DIR"},
			},
			&cli.Int64Flag{
				Name:  "cache-max-bytes",
				Usage: "prune the disk cache above this size (0 is unlimited)",
			},
			&cli.Uint64Flag{
				Name:    "max-file-size",
				Usage:   "reject entries and input files larger than this many bytes (0 is unlimited)",
				Value:   idcl.DefaultMaxFileSize,
				EnvVars: []string{"IDCL_MAX_FILE_SIZE"},
			},
		},
		Commands: []*cli.Command{
			&cmdExtract,
			&cmdList,
			&cmdMesh,
			&cmdImage,
			&cmdReport,
		},
	}
}

func newLogger(c *cli.Context) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// openArchive opens a local path or an http(s) URL. The returned close
// function releases the archive and the cache, if any.
func openArchive(c *cli.Context, target string, logger *slog.Logger) (*idcl.Archive, func(), error) {
	opts := []idcl.Option{idcl.WithLogger(logger), idcl.WithMaxFileSize(c.Uint64("max-file-size"))}
	closeCache := func() {}
	if dir := c.Path("cache-dir"); dir != "" {
		cache, err := disk.New(dir, disk.WithMaxBytes(c.Int64("cache-max-bytes")))
		if err != nil {
			return nil, nil, fmt.Errorf("cache: %w", err)
		}
		opts = append(opts, idcl.WithCache(cache))
		closeCache = func() { _ = cache.Close() } //nolint:errcheck // best-effort cleanup
	}

	var a *idcl.Archive
	var err error
	if isURL(target) {
		var src *idclhttp.Source
		src, err = idclhttp.NewSource(c.Context, target, idclhttp.WithLogger(logger))
		if err == nil {
			a, err = idcl.Open(src, append(opts, idcl.WithName(target))...)
		}
	} else {
		a, err = idcl.OpenFile(target, opts...)
	}
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	return a, func() {
		_ = a.Close() //nolint:errcheck // best-effort cleanup
		closeCache()
	}, nil
}

// readFile reads a loose input file, refusing files above --max-file-size.
func readFile(c *cli.Context, name string) ([]byte, error) {
	f, err := os.Open(name) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, err
	}
	defer f.Close()

	limit := c.Uint64("max-file-size")
	if limit == 0 {
		limit = math.MaxInt - 1
	}
	data, err := sizing.ReadAllWithLimit(f, limit, idcl.ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
