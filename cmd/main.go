package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/discord7/stocky/cmd/importer"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Stocky CMD"
	app.Usage = "The Stocky command line interface"

	app.Commands = []cli.Command{
		importCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var importCMD = cli.Command{
	Name:        "import",
	Usage:       "ingest a portfolio CSV from disk",
	Action:      importAction,
	ArgsUsage:   "<file.csv>",
	Flags:       []cli.Flag{},
	Description: `Run the full ingestion pipeline against a local broker export`,
}

func importAction(c *cli.Context) error {

	logrus.Info("Starting import CMD")

	if c.NArg() != 1 {
		return fmt.Errorf("usage: %s import <file.csv>", c.App.Name)
	}

	imp := &importer.Importer{}
	if err := imp.Start(c.Args().First()); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}
