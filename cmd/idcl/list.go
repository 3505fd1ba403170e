package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/meigma/idcl/dispatch"
)

var cmdList = cli.Command{
	Name:      "list",
	Usage:     "print the directory of a container",
	ArgsUsage: "<archive|url>",
	Action:    list,
}

func list(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("list: expected one archive", 2)
	}
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	a, closeArchive, err := openArchive(c, c.Args().First(), logger)
	if err != nil {
		return err
	}
	defer closeArchive()

	h := a.Header()
	fmt.Printf("%s: version %d, %d entries\n", a.Name(), h.Version, a.Len())

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "INDEX\tSIZE\tSTORED\tMETHOD\tKIND\tTYPE\t NAME")
	for e := range a.Entries() {
		kind := dispatch.Classify(e.TypeTag, e.Name, nil)
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\t %s\n",
			e.Index, e.OriginalSize, e.DataSize, e.Method, kind, e.TypeTag, e.Name)
	}
	return tw.Flush()
}
