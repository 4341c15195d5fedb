package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"aniq/internal/shared"
	"aniq/internal/tasks"
)

// Run executes a pipeline chain parsed from the raw command arguments.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: no commands given, see `aniq run --help`", shared.ErrMissingArgument)
	}

	steps, err := tasks.ParseChain(args)
	if err != nil {
		return err
	}

	return r.executeChain(ctx, steps)
}

// Train rebuilds the user's list for AMQ training: the whole list goes to
// PLANNING, then a sample drawn from the source users' lists is committed as
// COMPLETED. Expressed as a chain through the regular executor.
func (r *Runner) Train(ctx context.Context, cmd *cli.Command) error {
	sources := cmd.StringSlice("source")
	count := int(cmd.Int("count"))
	if count <= 0 {
		return fmt.Errorf("%w: --count must be positive, got %d", shared.ErrInvalidFlag, count)
	}

	me := r.config.Credentials.AniList.Username
	if me == "" {
		viewer, err := r.anilist.Viewer(ctx)
		if err != nil {
			return fmt.Errorf("cannot determine own username: %w", err)
		}
		me = viewer
	}

	r.logger.Info("building training list", "user", me, "sources", sources, "count", count)

	args := []string{
		"fetch-user", me, "mine", tasks.Terminator,
		"commit-merge", "mine", "--status", "PLANNING", tasks.Terminator,
	}

	pool := []string{"concat"}
	for i, source := range sources {
		name := fmt.Sprintf("src%d", i+1)
		args = append(args, "fetch-user", source, name, tasks.Terminator)
		pool = append(pool, name)
	}
	args = append(args, pool...)
	args = append(args, "pool", tasks.Terminator)

	args = append(args, "sample", "pool", "training", "--size", strconv.Itoa(count))
	if cmd.IsSet("seed") {
		args = append(args, "--seed", strconv.FormatInt(int64(cmd.Int("seed")), 10))
	}
	args = append(args, tasks.Terminator, "commit-merge", "training", "--status", "COMPLETED")

	steps, err := tasks.ParseChain(args)
	if err != nil {
		return err
	}

	return r.executeChain(ctx, steps)
}

// executeChain runs steps through a fresh executor, echoing progress
// messages to the output writer.
func (r *Runner) executeChain(ctx context.Context, steps []tasks.Step) error {
	executor := r.newExecutor()

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("%s\n", update.Message)
		}
	}()

	err := executor.Execute(ctx, steps, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("✓ Chain complete (%d steps)\n", len(steps))
	return nil
}
