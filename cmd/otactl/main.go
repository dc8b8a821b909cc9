package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ereader-ota/otactl/cmd/otactl/cliutil"
	"github.com/ereader-ota/otactl/cmd/otactl/updater"
)

const (
	versionText = "Print the version"
)

var (
	Version   = "DEV"
	BuildTime = "unknown"
	BuildType = ""
)

func main() {
	bInfo := cliutil.GetBuildInfo(BuildType, Version, BuildTime)
	updater.Init(bInfo)

	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"v", "V"},
		Usage:   versionText,
	}

	app := &cli.App{}
	app.Name = "otactl"
	app.Usage = "Fetch and install e-reader update builds"
	app.UsageText = "otactl [global options] [command] [command options]"
	app.Version = fmt.Sprintf("%s (built %s%s)", Version, BuildTime, bInfo.GetBuildTypeMsg())
	app.Description = `otactl downloads update artifacts published by a GitHub repository, from a pull
	request build, the latest default branch build or the latest release, and installs the
	payload at the deployment path of the device, emulator or test sandbox.`
	app.Flags = updater.Flags()
	app.Commands = commands(bInfo)

	runApp(app)
}

func commands(bInfo *cliutil.BuildInfo) []*cli.Command {
	cmds := updater.Commands()
	cmds = append(cmds, &cli.Command{
		Name: "version",
		Action: func(c *cli.Context) (err error) {
			fmt.Fprintln(c.App.Writer, bInfo.String())
			return nil
		},
		Usage:       versionText,
		Description: versionText,
	})
	return cmds
}

func runApp(app *cli.App) {
	ctx, stop := signalContext(context.Background())
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		// exit codes are handled by the commands; this is a flag parsing error
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(2)
	}
}
