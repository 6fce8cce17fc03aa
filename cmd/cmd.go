// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// campaignCommand handles the spreadsheet-to-send workflow
func campaignCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "campaign",
		Aliases: []string{"c"},
		Usage:   "Bulk messaging campaign operations",
		Commands: []*cli.Command{
			{
				Name:  "upload",
				Usage: "Upload a spreadsheet and print the parsed preview",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of preview rows to print",
						Value: 20,
					},
				},
				Action: r.CampaignUpload,
			},
			{
				Name:  "preview",
				Usage: "Fetch parsed rows for an upload job",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "job-id",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Row offset to start from",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of rows to fetch (0 = all)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CampaignPreview,
			},
			{
				Name:  "send",
				Usage: "Submit a send job for an upload and watch it to completion",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "job-id",
						Usage:    "Upload job to send to",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "message",
						Aliases:  []string{"m"},
						Usage:    "Message body; {name} is replaced per recipient when personalizing",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "personalize",
						Usage: "Substitute {name} with each recipient's first name",
					},
					&cli.StringSliceFlag{
						Name:  "select",
						Usage: "Contact id to include (repeatable); omit to send to all rows",
					},
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip the confirmation prompt",
					},
				},
				Action: r.CampaignSend,
			},
			{
				Name:  "export",
				Usage: "Write the parsed preview of an upload job to disk",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "job-id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, or text",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.CampaignExport,
			},
			{
				Name:  "progress",
				Usage: "Poll an existing send job until it finishes",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "send-job-id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the final snapshot as JSON",
					},
				},
				Action: r.CampaignProgress,
			},
			{
				Name:  "run",
				Usage: "Upload, send to every row, and watch progress in one step",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "message",
						Aliases:  []string{"m"},
						Usage:    "Message body",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "personalize",
						Usage: "Substitute {name} with each recipient's first name",
					},
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip the confirmation prompt",
					},
				},
				Action: r.CampaignRun,
			},
		},
	}
}

// historyCommand reads locally recorded campaigns
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Local campaign history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded campaigns, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of campaigns to show",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (pending, running, completed, failed)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one recorded campaign in full",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "export",
				Usage: "Export campaign history to CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.HistoryExport,
			},
		},
	}
}

// apiCommand handles direct API calls to the broadcast backend
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the broadcast backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a starter config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path to write the configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// serveCommand runs the broadcast backend server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the broadcast backend server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive campaigns.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI for a spreadsheet",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "path",
			},
		},
		Action: r.TUI,
	}
}
