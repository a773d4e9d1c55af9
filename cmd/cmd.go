// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"
)

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and storage",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify in the browser and store the token",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the authenticated Spotify user",
				Action: r.AuthStatus,
			},
		},
	}
}

func summarizeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "summarize",
		Usage: "Summarize the genres of a user's public playlists",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "user"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent playlist summaries (default from config)",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "Abort on the first playlist that fails",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for <user>.txt (default from config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON instead of text",
			},
		},
		Action: r.Summarize,
	}
}

func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Mood playlists",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate a playlist for a mood",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "mood"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of tracks",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Create a private playlist on your account",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Playlist name when saving",
					},
				},
				Action: r.PlaylistGenerate,
			},
			{
				Name:   "moods",
				Usage:  "List available moods",
				Action: r.PlaylistMoods,
			},
		},
	}
}

func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Recommend songs like a track, or like what's playing now",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "song",
				Aliases: []string{"s"},
				Usage:   "Track ID, URI or link (default: currently playing)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of recommendations",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Recommend,
	}
}

func queueCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "queue",
		Usage: "Playback queue",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a song to the queue of the active device",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "song"},
				},
				Action: r.QueueAdd,
			},
		},
	}
}

func gatherCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "gather",
		Usage: "Collect user/song interactions into a CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "user",
				Usage: "User ID recorded in rows (default: the authenticated user)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "CSV output path",
				Value:   defaultInteractionsPath,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent playlist fetches",
				Value: 5,
			},
			&cli.BoolFlag{
				Name:  "skip-playlists",
				Usage: "Only read recently played and saved tracks",
			},
			&cli.BoolFlag{
				Name:  "save-db",
				Usage: "Also store the interactions in the database",
			},
		},
		Action: r.Gather,
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse stored summaries and interactions",
		Commands: []*cli.Command{
			{
				Name:  "summaries",
				Usage: "List stored summaries",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user",
						Usage: "Only this user's summaries",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum rows",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "latest",
						Usage: "Print the most recent summary for --user",
					},
				},
				Action: r.HistorySummaries,
			},
			{
				Name:  "interactions",
				Usage: "Count stored interactions by kind",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Usage:    "User ID",
						Required: true,
					},
				},
				Action: r.HistoryInteractions,
			},
		},
	}
}

func menuCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "menu",
		Usage:  "Interactive menu",
		Action: r.Menu,
	}
}
