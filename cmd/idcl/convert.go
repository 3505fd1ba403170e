package main

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/meigma/idcl"
	"github.com/meigma/idcl/dispatch"
	"github.com/meigma/idcl/internal/batch"
	"github.com/meigma/idcl/mesh"
	"github.com/meigma/idcl/texture"
)

var cmdMesh = cli.Command{
	Name:      "mesh",
	Usage:     "convert an extracted .bmd6model to OBJ or GLB",
	ArgsUsage: "<file.bmd6model>",
	Flags: []cli.Flag{
		&cli.PathFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "write parts below `DIR`"},
		&cli.StringFlag{Name: "format", Value: "obj", Usage: "obj, glb, or both"},
		&cli.BoolFlag{Name: "rotate-x", Usage: "convert from Z-up to Y-up"},
		&cli.BoolFlag{Name: "flip-v", Usage: "flip texture coordinates vertically"},
		&cli.BoolFlag{Name: "flip-winding", Usage: "reverse triangle winding"},
		&cli.BoolFlag{Name: "smooth-normals", Usage: "compute normals for parts without them"},
	},
	Action: convertMesh,
}

var cmdImage = cli.Command{
	Name:      "image",
	Usage:     "convert an extracted .bimage to PNG, BMP, or TIFF",
	ArgsUsage: "<file.bimage>",
	Flags: []cli.Flag{
		&cli.PathFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "write images below `DIR`"},
		&cli.StringFlag{Name: "format", Value: "png", Usage: "png, bmp, or tiff"},
		&cli.BoolFlag{Name: "all-mips", Usage: "write every mip level"},
	},
	Action: convertImage,
}

func convertMesh(c *cli.Context) error {
	format, err := dispatch.ParseMeshFormat(c.String("format"))
	if err != nil {
		return err
	}
	var opts []mesh.WriteOption
	if c.Bool("rotate-x") {
		opts = append(opts, mesh.WithRotateX())
	}
	if c.Bool("flip-v") {
		opts = append(opts, mesh.WithFlipV())
	}
	if c.Bool("flip-winding") {
		opts = append(opts, mesh.WithFlipWinding())
	}
	if c.Bool("smooth-normals") {
		opts = append(opts, mesh.WithSmoothNormals())
	}
	return convert(c, "bmd6model", dispatch.WithMeshFormat(format), dispatch.WithMeshOptions(opts...))
}

func convertImage(c *cli.Context) error {
	encoding, err := texture.ParseEncoding(c.String("format"))
	if err != nil {
		return err
	}
	return convert(c, "image", dispatch.WithImageEncoding(encoding), dispatch.WithAllMips(c.Bool("all-mips")))
}

// convert runs one loose file through the same decoder the extractor uses.
func convert(c *cli.Context, typeTag string, opts ...dispatch.Option) error {
	if c.NArg() != 1 {
		return cli.Exit(c.Command.Name+": expected one file", 2)
	}
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	src := c.Args().First()
	data, err := readFile(c, src)
	if err != nil {
		return err
	}

	asset := &idcl.Asset{
		Entry: idcl.Entry{Name: filepath.Base(src), TypeTag: typeTag, OriginalSize: uint64(len(data))},
		Data:  data,
	}
	sink := batch.NewFileSink(c.Path("out"), batch.WithOverwrite(true))
	d := dispatch.New(append(opts, dispatch.WithLogger(logger))...)

	res, err := d.Dispatch(c.Context, asset, sink)
	if err != nil {
		return err
	}
	if res.Status == dispatch.StatusFailed {
		return res.Err
	}
	for _, o := range res.Outputs {
		fmt.Printf("%s\t%d\t%s\n", filepath.Join(sink.Dir(), o.Path), o.Size, o.Digest)
	}
	return nil
}
