package main

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/meigma/idcl"
	"github.com/meigma/idcl/dispatch"
	"github.com/meigma/idcl/mesh"
	"github.com/meigma/idcl/texture"
)

var cmdExtract = cli.Command{
	Name:      "extract",
	Usage:     "extract and convert every entry of one or more containers",
	ArgsUsage: "<archive|url>...",
	Flags: []cli.Flag{
		&cli.PathFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "write each archive below `DIR`/<archive name>"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, EnvVars: []string{"IDCL_WORKERS"}, Usage: "entries extracted concurrently (0 uses every CPU)"},
		&cli.StringFlag{Name: "mesh-format", Value: "obj", Usage: "obj, glb, or both"},
		&cli.StringFlag{Name: "image-format", Value: "png", Usage: "png, bmp, or tiff"},
		&cli.BoolFlag{Name: "all-mips", Usage: "write every mip level of images"},
		&cli.BoolFlag{Name: "rotate-x", Usage: "convert models from Z-up to Y-up"},
		&cli.BoolFlag{Name: "overwrite", Usage: "replace existing files"},
		&cli.BoolFlag{Name: "garbage", Usage: "also extract tiny extensionless root entries"},
		&cli.BoolFlag{Name: "keep-raw", Usage: "write entries that fail to decode unchanged"},
		&cli.BoolFlag{Name: "keep-failed", Usage: "write payloads that fail to decompress as .compressed"},
		&cli.IntFlag{Name: "max-depth", Value: idcl.DefaultMaxDepth, Usage: "levels of nested containers to expand"},
		&cli.StringSliceFlag{Name: "type", Usage: "only extract entries with this type tag (repeatable)"},
		&cli.Int64Flag{Name: "max-inflight", Usage: "cap decompressed bytes held in memory (0 is unlimited)"},
	},
	Action: extract,
}

func extract(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("extract: no archives given", 2)
	}
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	opts, err := extractOptions(c)
	if err != nil {
		return err
	}

	var failed int
	for _, target := range c.Args().Slice() {
		report, err := extractOne(c, target, opts)
		if report != nil {
			s := report.Summary()
			fmt.Printf("%s: %s\n", target, s)
			failed += s.Failed
		}
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d entries failed; see the manifest for details", failed), 1)
	}
	logger.Debug("extract finished", "archives", c.NArg())
	return nil
}

func extractOptions(c *cli.Context) ([]idcl.ExtractOption, error) {
	meshFormat, err := dispatch.ParseMeshFormat(c.String("mesh-format"))
	if err != nil {
		return nil, err
	}
	encoding, err := texture.ParseEncoding(c.String("image-format"))
	if err != nil {
		return nil, err
	}

	opts := []idcl.ExtractOption{
		idcl.ExtractWithWorkers(c.Int("workers")),
		idcl.ExtractWithMaxInflightBytes(c.Int64("max-inflight")),
		idcl.ExtractWithOverwrite(c.Bool("overwrite")),
		idcl.ExtractWithGarbage(c.Bool("garbage")),
		idcl.ExtractWithKeepRaw(c.Bool("keep-raw")),
		idcl.ExtractWithKeepFailed(c.Bool("keep-failed")),
		idcl.ExtractWithMaxDepth(c.Int("max-depth")),
		idcl.ExtractWithMeshFormat(meshFormat),
		idcl.ExtractWithImageEncoding(encoding),
		idcl.ExtractWithAllMips(c.Bool("all-mips")),
		idcl.ExtractWithProgress(printProgress),
	}
	if c.Bool("rotate-x") {
		opts = append(opts, idcl.ExtractWithMeshOptions(mesh.WithRotateX()))
	}
	if types := c.StringSlice("type"); len(types) > 0 {
		opts = append(opts, idcl.ExtractWithFilter(func(e idcl.Entry) bool {
			return slices.Contains(types, e.TypeTag)
		}))
	}
	return opts, nil
}

func extractOne(c *cli.Context, target string, opts []idcl.ExtractOption) (*idcl.Report, error) {
	logger, err := newLogger(c)
	if err != nil {
		return nil, err
	}
	a, closeArchive, err := openArchive(c, target, logger)
	if err != nil {
		return nil, err
	}
	defer closeArchive()

	dest := filepath.Join(c.Path("out"), archiveStem(target))
	report, extractErr := a.ExtractAll(c.Context, dest, opts...)
	if report == nil {
		return nil, extractErr
	}

	if err := os.MkdirAll(dest, 0o750); err != nil {
		return report, errors.Join(extractErr, err)
	}
	manifest := filepath.Join(dest, idcl.ManifestName)
	if err := os.WriteFile(manifest, report.MarshalManifest(), 0o600); err != nil {
		return report, errors.Join(extractErr, fmt.Errorf("write manifest: %w", err))
	}
	return report, extractErr
}

// archiveStem names the output directory after the archive's base name
// without its extension.
func archiveStem(target string) string {
	base := filepath.Base(target)
	if isURL(target) {
		base = path.Base(strings.SplitN(target, "?", 2)[0])
	}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

func printProgress(ev idcl.ProgressEvent) {
	switch ev.Stage {
	case idcl.StageOpening:
		fmt.Fprintf(os.Stderr, "%s: %d entries\n", ev.Path, ev.FilesTotal)
	case idcl.StageExtracting:
		if ev.FilesDone%100 == 0 {
			fmt.Fprintf(os.Stderr, "extracted %d/%d entries...\n", ev.FilesDone, ev.FilesTotal)
		}
	case idcl.StageDone:
	}
}
