// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authFlags locate the client secrets and credential and configure the consent flow.
func authFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "secrets-file",
			Usage:   "OAuth client secret JSON downloaded from the API console",
			Sources: cli.EnvVars("PLCOPY_SECRETS_FILE"),
		},
		&cli.StringFlag{
			Name:  "token-file",
			Usage: "Credential file (default: <program>-oauth2.json)",
		},
		&cli.BoolFlag{
			Name:  "no-browser",
			Usage: "Print the consent URL without opening a browser",
		},
		&cli.StringFlag{
			Name:  "auth-host",
			Usage: "Host for the OAuth callback server",
		},
		&cli.IntFlag{
			Name:  "auth-port",
			Usage: "Port for the OAuth callback server (0 picks a free port)",
		},
		&cli.DurationFlag{
			Name:  "auth-timeout",
			Usage: "Give up waiting for consent after this long (0 waits until interrupted)",
		},
	}
}

// copyCommand copies a playlist into a new playlist
func copyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "copy",
		Usage: "Copy a playlist into a new playlist on your account",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "playlist-id",
				Aliases: []string{"id"},
				Usage:   "Source playlist ID",
				Sources: cli.EnvVars("PLCOPY_PLAYLIST_ID"),
			},
			&cli.StringFlag{
				Name:    "order",
				Usage:   "Item order in the new playlist: asc or desc",
				Sources: cli.EnvVars("PLCOPY_ORDER"),
			},
			&cli.StringFlag{
				Name:  "privacy",
				Usage: "Visibility of the new playlist: private, public or source",
			},
			&cli.BoolFlag{
				Name:  "cleanup-on-failure",
				Usage: "Delete the partially filled playlist when the copy fails",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Read the source playlist without creating anything",
			},
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Print a copy summary instead of the new playlist ID",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Pick and copy a playlist interactively",
			},
		}, authFlags()...),
		Action: r.Copy,
	}
}

// authCommand manages the stored credential
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authorization",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize access to your YouTube account",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Discard the stored credential and authorize again",
					},
				}, authFlags()...),
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the stored credential",
				Flags:  authFlags(),
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Delete the stored credential",
				Flags:  authFlags(),
				Action: r.AuthLogout,
			},
		},
	}
}

// playlistsCommand lists the account's playlists
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List your playlists",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		}, authFlags()...),
		Action: r.Playlists,
	}
}

// playlistCommand inspects a single playlist
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show a playlist's metadata and videos",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "order",
						Usage: "Video order: asc or desc",
						Value: "asc",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, markdown, csv or json",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file (a directory for markdown) instead of stdout",
					},
				}, authFlags()...),
				Action: r.PlaylistShow,
			},
		},
	}
}

// historyCommand inspects recorded copy runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect past copy runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List copy runs, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status: pending, running, completed or failed",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Filter by source playlist ID",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to return",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a single copy run",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Run ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the copy history database and run migrations",
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
