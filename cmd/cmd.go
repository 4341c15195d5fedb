// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, trainCommand, catalogCommand, listCommand, authCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// runCommand executes a pipeline chain of collection commands.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute a command chain against a shared collection store",
		Description: `Commands are separated by the "+" token and share named collections.

Recognized commands:
  fetch-all <dest>                     copy the catalog snapshot into <dest>
  fetch-user <username> <dest>         fetch a user's list into <dest>
  sample <src> <dest> [--size N] [--offset K] [--seed S]
         [--max-popularity P] [--min-year Y] [--max-year Y] [--genres a,b]
  concat <src>... <dest>               append collections into <dest>
  commit-merge <src> --status S        add/update entries, leave the rest
  commit-replace <src> --status S      full reconciliation, removals included
  print <src> [--format text|csv|markdown]

The reserved name ALL refers to the full catalog snapshot. The --genres
filter keeps entries carrying every listed genre.

Example:
  aniq run fetch-all pool + sample pool pick --size 10 --seed 7 + commit-merge pick --status PLANNING`,
		ArgsUsage: "<command> [args...] [+ <command> ...]",
		Action:    r.Run,
	}
}

// trainCommand builds an AMQ training list from one or more source users.
func trainCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "Reset your list to PLANNING and mark a sample of source users' entries COMPLETED",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "source",
				Aliases:  []string{"s"},
				Usage:    "AniList username to draw entries from (repeatable)",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of entries to mark COMPLETED",
				Value:   10,
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Sampling seed for a reproducible training set",
			},
		},
		Action: r.Train,
	}
}

// catalogCommand manages the local catalog snapshot.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Manage the local catalog snapshot",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Download the catalog ordered by popularity into the local snapshot",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "pages",
						Usage: "Maximum number of pages to fetch (50 entries each)",
					},
				},
				Action: r.CatalogSync,
			},
			{
				Name:   "info",
				Usage:  "Show snapshot location and entry count",
				Action: r.CatalogInfo,
			},
		},
	}
}

// listCommand reads remote media lists.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Remote media list operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print a user's media list",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "username",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ListShow,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with AniList via OAuth2 and store the token",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check whether the stored token is valid",
				Action: r.AuthStatus,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing collections.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"browse"},
		Usage:   "Browse a user's list (or the catalog) interactively",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "username",
			},
		},
		Action: r.TUI,
	}
}
