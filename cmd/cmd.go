// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// uiCommand opens the interactive drop zone.
func uiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "ui",
		Aliases:   []string{"tui"},
		Usage:     "Open the drop zone; drop a file onto the terminal window to upload it",
		ArgsUsage: "[path...]",
		Action:    r.UI,
	}
}

// uploadCommand runs the pipeline without the TUI.
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Aliases:   []string{"up"},
		Usage:     "Upload the first existing file and print its task log",
		ArgsUsage: "<path...>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "rate-limit",
				Usage: "Upload bandwidth in bytes per second, 0 for unlimited (overrides upload.rate_limit)",
			},
		},
		Action: r.Upload,
	}
}

// setupCommand handles setup operations for configuration and the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write the example configuration to --config",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "print",
						Usage: "Print the effective configuration as JSON instead",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the history database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// historyCommand reads the upload history.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded upload sessions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded sessions, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: json, csv, markdown, txt",
						Value:   "txt",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of sessions, 0 for all",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only sessions with this status (uploading, streaming, ended, rejected, malformed)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a recorded session",
				ArgsUsage: "<id>",
				Action:    r.HistoryDelete,
			},
		},
	}
}
