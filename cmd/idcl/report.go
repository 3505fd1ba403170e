package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/meigma/idcl"
)

var cmdReport = cli.Command{
	Name:      "report",
	Usage:     "print a manifest written by extract",
	ArgsUsage: "<" + idcl.ManifestName + ">",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "failed", Usage: "only list failed entries"},
	},
	Action: report,
}

func report(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("report: expected one manifest", 2)
	}
	data, err := readFile(c, c.Args().First())
	if err != nil {
		return err
	}
	r, err := idcl.UnmarshalManifest(data)
	if err != nil {
		return err
	}

	shown := r
	if c.Bool("failed") {
		shown = &idcl.Report{Archive: r.Archive, Entries: r.Failures()}
	}
	fmt.Printf("%s: %s\n", r.Archive, r.Summary())
	return shown.WriteTable(os.Stdout)
}
