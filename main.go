package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/vincent-caetano/how-much/internal/annotate"
	dbcmd "github.com/vincent-caetano/how-much/internal/db"
	"github.com/vincent-caetano/how-much/internal/serve"
	settingscmd "github.com/vincent-caetano/how-much/internal/settings"
	whitelistcmd "github.com/vincent-caetano/how-much/internal/whitelist"
	"github.com/vincent-caetano/how-much/pkg/help"
)

func main() {
	app := &cli.App{
		Name:  "how-much",
		Usage: "Show prices on web pages as the working time they cost",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Usage: "SQLite database path (default: how-much.db next to the executable)", EnvVars: []string{"HOW_MUCH_DB"}},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Only log errors"},
			&cli.BoolFlag{Name: "verbose", Usage: "Log debug output"},
		},
		Commands: []*cli.Command{
			{
				Name:      "annotate",
				Usage:     "Annotate prices in local HTML files or fetched pages",
				ArgsUsage: "[file|-]...",
				Flags:     annotate.Flags(),
				Action:    annotate.AnnotateAction,
			},
			{
				Name:  "settings",
				Usage: "Show and change salary, currency, mode and work schedule",
				Subcommands: []*cli.Command{
					{Name: "show", Usage: "Print every setting", Action: settingscmd.ShowAction},
					{Name: "set", Usage: "Set one setting", ArgsUsage: "<key> <value>", Action: settingscmd.SetAction},
					{
						Name:      "reset",
						Usage:     "Restore defaults",
						ArgsUsage: "<key>...",
						Flags:     []cli.Flag{&cli.BoolFlag{Name: "all", Usage: "Reset every setting"}},
						Action:    settingscmd.ResetAction,
					},
					{
						Name:  "export",
						Usage: "Write settings as YAML",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "file", Usage: "Destination file (default: stdout)"},
							&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
						},
						Action: settingscmd.ExportAction,
					},
					{Name: "import", Usage: "Load settings from YAML", ArgsUsage: "<file|->", Action: settingscmd.ImportAction},
				},
			},
			{
				Name:  "whitelist",
				Usage: "Manage the domains that get annotated",
				Subcommands: []*cli.Command{
					{Name: "list", Usage: "Print whitelisted domains", Action: whitelistcmd.ListAction},
					{Name: "add", Usage: "Whitelist domains", ArgsUsage: "<domain>...", Action: whitelistcmd.AddAction},
					{Name: "remove", Usage: "Remove domains", ArgsUsage: "<domain>...", Action: whitelistcmd.RemoveAction},
					{Name: "check", Usage: "Report whether URLs would be annotated", ArgsUsage: "<url>...", Action: whitelistcmd.CheckAction},
					{Name: "reset", Usage: "Restore the default domains", Action: whitelistcmd.ResetAction},
				},
			},
			{
				Name:  "runs",
				Usage: "Inspect the history of annotated documents",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List recent runs",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum runs to show (0 for all)"},
							&cli.StringFlag{Name: "domain", Usage: "Only runs for this domain"},
						},
						Action: dbcmd.RunsAction,
					},
					{Name: "show", Usage: "Show one run (default: latest)", ArgsUsage: "[id]", Action: dbcmd.RunAction},
				},
			},
			{
				Name:   "serve",
				Usage:  "Annotate over HTTP",
				Flags:  serve.Flags(),
				Action: serve.ServeAction,
			},
			{
				Name:  "coldstart",
				Usage: "Print a quick-start guide",
				Action: func(c *cli.Context) error {
					fmt.Fprint(c.App.Writer, help.ColdstartYAML)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
