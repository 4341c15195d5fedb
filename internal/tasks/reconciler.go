package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"aniq/internal/models"
	"aniq/internal/services"
	"aniq/internal/shared"
)

// Mode selects how a commit treats remote entries absent from the target.
type Mode int

const (
	// ModeMerge adds or updates entries for the target, leaving the user's
	// other remote entries untouched.
	ModeMerge Mode = iota
	// ModeReplace additionally removes remote entries at the committed
	// status that are absent from the target.
	ModeReplace
)

func (m Mode) String() string {
	switch m {
	case ModeMerge:
		return "merge"
	case ModeReplace:
		return "replace"
	default:
		return ""
	}
}

// Reconciler aligns the user's live remote list with a target collection.
//
// Mutations are issued one at a time behind a rate limiter; transient
// failures are retried with bounded exponential backoff, fatal failures are
// recorded immediately. There is no rollback path: the remote list is
// mutated incrementally and partial failure is reported per identifier.
type Reconciler struct {
	list        services.ListService
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
	sleep       func(time.Duration)
	logger      *log.Logger
}

// ReconcilerOpts configures a Reconciler. Zero values fall back to one
// request per second, 4 attempts, and a 500ms base backoff.
type ReconcilerOpts struct {
	List        services.ListService
	RateLimit   float64
	MaxAttempts int
	BaseBackoff time.Duration
	Logger      *log.Logger
}

// NewReconciler creates a Reconciler with the provided options.
func NewReconciler(opts ReconcilerOpts) *Reconciler {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1.0
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 4
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Reconciler{
		list:        opts.List,
		limiter:     rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		maxAttempts: opts.MaxAttempts,
		baseBackoff: opts.BaseBackoff,
		sleep:       time.Sleep,
		logger:      opts.Logger,
	}
}

// Plan computes the mutations needed to align the remote snapshot with the
// target collection at the given status. Upserts appear in target order;
// in replace mode, removals of unlisted remote entries follow in snapshot
// order. Entries already correct remotely are recorded as skipped.
// Duplicate identifiers within the target collapse to the first occurrence.
func Plan(target []models.MediaRecord, remote []models.ListEntry, status models.Status, mode Mode) models.MutationPlan {
	remoteByMedia := make(map[int]models.ListEntry, len(remote))
	for _, entry := range remote {
		remoteByMedia[entry.MediaID] = entry
	}

	var plan models.MutationPlan
	seen := make(map[int]bool, len(target))

	for _, record := range target {
		if seen[record.ID] {
			continue
		}
		seen[record.ID] = true

		t := models.ListEntryTarget{
			MediaID: record.ID,
			Title:   record.Title,
			Status:  status,
			Kind:    models.MutationUpsert,
		}

		if existing, ok := remoteByMedia[record.ID]; ok {
			t.EntryID = existing.EntryID
			if existing.Status == status {
				plan.Skipped = append(plan.Skipped, t)
				continue
			}
		}

		plan.Targets = append(plan.Targets, t)
	}

	if mode == ModeReplace {
		for _, entry := range remote {
			if seen[entry.MediaID] {
				continue
			}
			plan.Targets = append(plan.Targets, models.ListEntryTarget{
				MediaID: entry.MediaID,
				EntryID: entry.EntryID,
				Title:   entry.Title,
				Status:  entry.Status,
				Kind:    models.MutationRemove,
			})
		}
	}

	return plan
}

// Commit fetches the current remote list once, diffs it against target, and
// executes the resulting plan. A mutation failure never aborts the remaining
// plan; each identifier's outcome is recorded in the returned report. The
// error return is non-nil only for unrecoverable failures before any
// mutation is issued (e.g. the snapshot read failing).
func (r *Reconciler) Commit(ctx context.Context, target []models.MediaRecord, status models.Status, mode Mode, progress chan<- ProgressUpdate) (*models.MutationReport, error) {
	if r.list == nil {
		return nil, fmt.Errorf("%w: list service not initialized", shared.ErrServiceUnavailable)
	}

	remote, err := r.list.FetchUserList(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote list snapshot: %w", err)
	}

	plan := Plan(target, remote, status, mode)
	sendProgress(progress, planUpdate(&plan))

	report := &models.MutationReport{}
	for _, skipped := range plan.Skipped {
		report.Results = append(report.Results, models.MutationResult{
			MediaID: skipped.MediaID,
			Title:   skipped.Title,
			Kind:    skipped.Kind,
			Outcome: models.OutcomeSkipped,
		})
	}

	total := len(plan.Targets)
	for i, t := range plan.Targets {
		sendProgress(progress, mutateUpdate(i+1, total, t))

		err := r.mutate(ctx, t)
		result := models.MutationResult{
			MediaID: t.MediaID,
			Title:   t.Title,
			Kind:    t.Kind,
			Outcome: models.OutcomeSucceeded,
		}
		if err != nil {
			result.Outcome = models.OutcomeFailed
			result.Err = err
			sendProgress(progress, mutateFailedUpdate(i+1, total, t, err))
			r.logger.Error("mutation failed", "media", t.MediaID, "kind", t.Kind.String(), "err", err)
		}

		report.Results = append(report.Results, result)
	}

	return report, nil
}

// mutate issues one remote write, retrying transient failures with
// exponential backoff up to the attempt ceiling.
func (r *Reconciler) mutate(ctx context.Context, t models.ListEntryTarget) error {
	var lastErr error

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			r.sleep(r.baseBackoff << (attempt - 1))
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}

		lastErr = r.issue(ctx, t)
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}

		r.logger.Warn("transient mutation failure, retrying",
			"media", t.MediaID, "attempt", attempt+1, "max", r.maxAttempts, "err", lastErr)
	}

	return fmt.Errorf("gave up after %d attempts: %w", r.maxAttempts, lastErr)
}

func (r *Reconciler) issue(ctx context.Context, t models.ListEntryTarget) error {
	switch t.Kind {
	case models.MutationRemove:
		return r.list.DeleteEntry(ctx, t.EntryID)
	default:
		_, err := r.list.SaveEntry(ctx, t.MediaID, t.Status)
		return err
	}
}

// isTransient reports whether the error is worth retrying. Rate limits and
// service outages are transient; auth and not-found errors are not.
func isTransient(err error) bool {
	return errors.Is(err, shared.ErrRateLimited) || errors.Is(err, shared.ErrServiceUnavailable)
}
