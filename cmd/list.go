package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"aniq/internal/shared"
)

// ListShow prints a user's remote media list.
func (r *Runner) ListShow(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		username = r.config.Credentials.AniList.Username
	}
	if username == "" {
		return fmt.Errorf("%w: username (set credentials.anilist.username or pass one)", shared.ErrMissingArgument)
	}

	r.logger.Info("fetching media list", "username", username)

	entries, err := r.anilist.FetchUserList(ctx, username)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	r.writePlain("%s (%d entries)\n", username, len(entries))
	for _, entry := range entries {
		r.writePlain("  %-10s %s (%d)\n", entry.Status, entry.Title, entry.MediaID)
	}

	return nil
}
