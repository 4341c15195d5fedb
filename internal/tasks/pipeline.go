package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"aniq/internal/formatter"
	"aniq/internal/models"
	"aniq/internal/services"
	"aniq/internal/shared"
)

// Terminator separates command groups in a chain. Chosen over ";" so chains
// can be typed without shell quoting.
const Terminator = "+"

// Step is one parsed command group in a chain.
type Step struct {
	Name  string
	Args  []string
	Flags map[string]string
	Pos   int // 1-based position in the chain
}

// ParseChain splits raw arguments into command groups on the [Terminator]
// token and parses each group's positionals and --flags. Flags accept
// "--key=value" or "--key value".
func ParseChain(args []string) ([]Step, error) {
	var steps []Step
	group := []string{}

	flush := func() error {
		if len(group) == 0 {
			return fmt.Errorf("%w: empty command group", shared.ErrInvalidArgument)
		}
		step, err := parseGroup(group, len(steps)+1)
		if err != nil {
			return err
		}
		steps = append(steps, step)
		group = group[:0]
		return nil
	}

	for _, arg := range args {
		if arg == Terminator {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		group = append(group, arg)
	}

	if len(group) > 0 || len(steps) == 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	return steps, nil
}

func parseGroup(group []string, pos int) (Step, error) {
	step := Step{
		Name:  group[0],
		Flags: make(map[string]string),
		Pos:   pos,
	}

	for i := 1; i < len(group); i++ {
		token := group[i]
		if !strings.HasPrefix(token, "--") {
			step.Args = append(step.Args, token)
			continue
		}

		key := strings.TrimPrefix(token, "--")
		if k, v, ok := strings.Cut(key, "="); ok {
			step.Flags[k] = v
			continue
		}

		if i+1 >= len(group) {
			return Step{}, fmt.Errorf("%w: flag --%s requires a value", shared.ErrInvalidFlag, key)
		}
		i++
		step.Flags[key] = group[i]
	}

	return step, nil
}

type stepKind int

const (
	kindFetchAll stepKind = iota
	kindFetchUser
	kindSample
	kindConcat
	kindCommit
	kindPrint
)

// compiledStep is a validated step with its arguments parsed into typed form.
type compiledStep struct {
	step     Step
	kind     stepKind
	dest     string
	source   string
	sources  []string
	username string
	spec     models.SampleSpec
	status   models.Status
	mode     Mode
	format   string
}

// Executor runs command chains against a single collection store.
type Executor struct {
	store      *CollectionStore
	list       services.ListService
	reconciler *Reconciler
	output     io.Writer
	logger     *log.Logger
}

// ExecutorOpts contains the collaborators an Executor drives.
type ExecutorOpts struct {
	Catalog    services.Catalog
	List       services.ListService
	Reconciler *Reconciler
	Output     io.Writer
	Logger     *log.Logger
}

// NewExecutor creates an Executor with a fresh collection store.
func NewExecutor(opts ExecutorOpts) *Executor {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Executor{
		store:      NewCollectionStore(opts.Catalog),
		list:       opts.List,
		reconciler: opts.Reconciler,
		output:     opts.Output,
		logger:     opts.Logger,
	}
}

// Store exposes the executor's collection store, mainly for tests and the
// TUI layer.
func (e *Executor) Store() *CollectionStore {
	return e.store
}

// Execute validates every step of the chain up front, then runs the steps
// strictly in order. Validation failures (bad arguments, references to
// collections no earlier step defines) abort before any I/O. At run time the
// chain stops at the first unrecoverable error, naming the failed step;
// collections written by earlier steps stay in the store.
func (e *Executor) Execute(ctx context.Context, steps []Step, progress chan<- ProgressUpdate) error {
	compiled, err := e.compile(steps)
	if err != nil {
		return err
	}

	runID := shared.GenerateID()
	logger := e.logger.With("run", runID)
	logger.Info("executing chain", "steps", len(compiled))

	for _, cs := range compiled {
		logger.Debug("running step", "pos", cs.step.Pos, "command", cs.step.Name)
		if err := e.run(ctx, cs, progress); err != nil {
			return fmt.Errorf("step %d (%s): %w", cs.step.Pos, cs.step.Name, err)
		}
	}

	return nil
}

// compile parses and validates the whole chain before execution, tracking
// which collection names each step defines so later steps can reference them.
// The reserved ALL name is always referenceable and never a valid
// destination.
func (e *Executor) compile(steps []Step) ([]compiledStep, error) {
	compiled := make([]compiledStep, 0, len(steps))
	defined := make(map[string]bool)
	for _, name := range e.store.Names() {
		defined[name] = true
	}

	checkSource := func(step Step, name string) error {
		if name == AllCollection || defined[name] {
			return nil
		}
		return fmt.Errorf("step %d (%s): %w: %q", step.Pos, step.Name, shared.ErrUnknownCollection, name)
	}
	checkDest := func(step Step, name string) error {
		if name == AllCollection {
			return fmt.Errorf("step %d (%s): %w: %q is reserved", step.Pos, step.Name, shared.ErrInvalidArgument, name)
		}
		return nil
	}

	for _, step := range steps {
		cs, err := compileStep(step)
		if err != nil {
			return nil, err
		}

		switch cs.kind {
		case kindFetchAll, kindFetchUser:
			if err := checkDest(step, cs.dest); err != nil {
				return nil, err
			}
			defined[cs.dest] = true
		case kindSample:
			if err := checkSource(step, cs.source); err != nil {
				return nil, err
			}
			if err := checkDest(step, cs.dest); err != nil {
				return nil, err
			}
			defined[cs.dest] = true
		case kindConcat:
			for _, src := range cs.sources {
				if err := checkSource(step, src); err != nil {
					return nil, err
				}
			}
			if err := checkDest(step, cs.dest); err != nil {
				return nil, err
			}
			defined[cs.dest] = true
		case kindCommit, kindPrint:
			if err := checkSource(step, cs.source); err != nil {
				return nil, err
			}
		}

		compiled = append(compiled, cs)
	}

	return compiled, nil
}

func compileStep(step Step) (compiledStep, error) {
	cs := compiledStep{step: step}

	switch step.Name {
	case "fetch-all":
		cs.kind = kindFetchAll
		if err := wantArgs(step, 1); err != nil {
			return cs, err
		}
		if err := wantFlags(step); err != nil {
			return cs, err
		}
		cs.dest = step.Args[0]

	case "fetch-user":
		cs.kind = kindFetchUser
		if err := wantArgs(step, 2); err != nil {
			return cs, err
		}
		if err := wantFlags(step); err != nil {
			return cs, err
		}
		cs.username = step.Args[0]
		cs.dest = step.Args[1]

	case "sample":
		cs.kind = kindSample
		if err := wantArgs(step, 2); err != nil {
			return cs, err
		}
		if err := wantFlags(step, "size", "offset", "seed", "max-popularity", "min-year", "max-year", "genres"); err != nil {
			return cs, err
		}
		cs.source = step.Args[0]
		cs.dest = step.Args[1]

		spec, err := compileSpec(step)
		if err != nil {
			return cs, err
		}
		cs.spec = spec

	case "concat":
		cs.kind = kindConcat
		if len(step.Args) < 2 {
			return cs, stepErr(step, fmt.Errorf("%w: expected at least two positional arguments, got %d", shared.ErrInvalidArgument, len(step.Args)))
		}
		if err := wantFlags(step); err != nil {
			return cs, err
		}
		cs.sources = step.Args[:len(step.Args)-1]
		cs.dest = step.Args[len(step.Args)-1]

	case "commit-merge", "commit-replace":
		cs.kind = kindCommit
		cs.mode = ModeMerge
		if step.Name == "commit-replace" {
			cs.mode = ModeReplace
		}
		if err := wantArgs(step, 1); err != nil {
			return cs, err
		}
		if err := wantFlags(step, "status"); err != nil {
			return cs, err
		}
		cs.source = step.Args[0]

		raw, ok := step.Flags["status"]
		if !ok {
			return cs, stepErr(step, fmt.Errorf("%w: --status", shared.ErrMissingArgument))
		}
		status, err := models.ParseStatus(raw)
		if err != nil {
			return cs, stepErr(step, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err))
		}
		cs.status = status

	case "print":
		cs.kind = kindPrint
		if err := wantArgs(step, 1); err != nil {
			return cs, err
		}
		if err := wantFlags(step, "format"); err != nil {
			return cs, err
		}
		cs.source = step.Args[0]
		cs.format = step.Flags["format"]
		if cs.format == "" {
			cs.format = "text"
		}
		switch cs.format {
		case "text", "csv", "markdown":
		default:
			return cs, stepErr(step, fmt.Errorf("%w: format must be text, csv, or markdown", shared.ErrInvalidFlag))
		}

	default:
		return cs, fmt.Errorf("step %d: %w: %q", step.Pos, shared.ErrUnknownCommand, step.Name)
	}

	return cs, nil
}

func compileSpec(step Step) (models.SampleSpec, error) {
	var spec models.SampleSpec

	size, err := intFlag(step, "size")
	if err != nil {
		return spec, err
	}
	spec.Size = size

	offset, err := intFlag(step, "offset")
	if err != nil {
		return spec, err
	}
	if offset != nil {
		spec.Offset = *offset
	}

	if raw, ok := step.Flags["seed"]; ok {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return spec, stepErr(step, fmt.Errorf("%w: --seed must be an integer, got %q", shared.ErrInvalidFlag, raw))
		}
		spec.Seed = &seed
	}

	if spec.MaxPopularity, err = intFlag(step, "max-popularity"); err != nil {
		return spec, err
	}
	if spec.MinYear, err = intFlag(step, "min-year"); err != nil {
		return spec, err
	}
	if spec.MaxYear, err = intFlag(step, "max-year"); err != nil {
		return spec, err
	}

	if raw, ok := step.Flags["genres"]; ok {
		for _, genre := range strings.Split(raw, ",") {
			genre = strings.TrimSpace(genre)
			if genre != "" {
				spec.Genres = append(spec.Genres, genre)
			}
		}
	}

	// Invalid numeric configuration surfaces here, not at run time
	if err := validateSpec(spec); err != nil {
		return spec, stepErr(step, err)
	}

	return spec, nil
}

func intFlag(step Step, name string) (*int, error) {
	raw, ok := step.Flags[name]
	if !ok {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, stepErr(step, fmt.Errorf("%w: --%s must be an integer, got %q", shared.ErrInvalidFlag, name, raw))
	}
	return &v, nil
}

func wantArgs(step Step, n int) error {
	if len(step.Args) != n {
		return stepErr(step, fmt.Errorf("%w: expected %d positional arguments, got %d", shared.ErrInvalidArgument, n, len(step.Args)))
	}
	return nil
}

func wantFlags(step Step, allowed ...string) error {
	for flag := range step.Flags {
		known := false
		for _, a := range allowed {
			if flag == a {
				known = true
				break
			}
		}
		if !known {
			return stepErr(step, fmt.Errorf("%w: unknown flag --%s", shared.ErrInvalidFlag, flag))
		}
	}
	return nil
}

func stepErr(step Step, err error) error {
	return fmt.Errorf("step %d (%s): %w", step.Pos, step.Name, err)
}

func (e *Executor) run(ctx context.Context, cs compiledStep, progress chan<- ProgressUpdate) error {
	switch cs.kind {
	case kindFetchAll:
		return e.runFetchAll(ctx, cs, progress)
	case kindFetchUser:
		return e.runFetchUser(ctx, cs, progress)
	case kindSample:
		return e.runSample(ctx, cs, progress)
	case kindConcat:
		return e.runConcat(ctx, cs)
	case kindCommit:
		return e.runCommit(ctx, cs, progress)
	case kindPrint:
		return e.runPrint(ctx, cs)
	default:
		return shared.ErrUnknownCommand
	}
}

func (e *Executor) runFetchAll(ctx context.Context, cs compiledStep, progress chan<- ProgressUpdate) error {
	all, err := e.store.Resolve(ctx, AllCollection)
	if err != nil {
		return err
	}

	sendProgress(progress, fetchCatalogUpdate(len(all)))
	e.store.Put(cs.dest, all)
	return nil
}

func (e *Executor) runFetchUser(ctx context.Context, cs compiledStep, progress chan<- ProgressUpdate) error {
	if e.list == nil {
		return fmt.Errorf("%w: list service not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, fetchListUpdate(cs.username))
	entries, err := e.list.FetchUserList(ctx, cs.username)
	if err != nil {
		return err
	}

	records := make([]models.MediaRecord, 0, len(entries))
	byID := e.catalogIndex(ctx)
	for _, entry := range entries {
		if record, ok := byID[entry.MediaID]; ok {
			records = append(records, record)
			continue
		}
		records = append(records, models.MediaRecord{ID: entry.MediaID, Title: entry.Title})
	}

	e.store.Put(cs.dest, records)
	return nil
}

// catalogIndex returns catalog records keyed by ID so fetched list entries
// carry filterable attributes. A missing snapshot is not an error here; the
// entries keep their bare ID and title.
func (e *Executor) catalogIndex(ctx context.Context) map[int]models.MediaRecord {
	all, err := e.store.Resolve(ctx, AllCollection)
	if err != nil {
		if !errors.Is(err, shared.ErrCatalogUnavailable) {
			e.logger.Debug("catalog enrichment unavailable", "err", err)
		}
		return nil
	}

	byID := make(map[int]models.MediaRecord, len(all))
	for _, record := range all {
		byID[record.ID] = record
	}
	return byID
}

func (e *Executor) runSample(ctx context.Context, cs compiledStep, progress chan<- ProgressUpdate) error {
	source, err := e.store.Resolve(ctx, cs.source)
	if err != nil {
		return err
	}

	sampled, err := Sample(source, cs.spec)
	if err != nil {
		return err
	}

	sendProgress(progress, sampleUpdate(cs.source, cs.dest, len(sampled)))
	e.store.Put(cs.dest, sampled)
	return nil
}

// runConcat appends the source collections in order into dest. Duplicate
// identifiers are preserved; use sample to thin them if needed.
func (e *Executor) runConcat(ctx context.Context, cs compiledStep) error {
	var combined []models.MediaRecord
	for _, src := range cs.sources {
		records, err := e.store.Resolve(ctx, src)
		if err != nil {
			return err
		}
		combined = append(combined, records...)
	}

	e.store.Put(cs.dest, combined)
	return nil
}

func (e *Executor) runCommit(ctx context.Context, cs compiledStep, progress chan<- ProgressUpdate) error {
	if e.reconciler == nil {
		return fmt.Errorf("%w: reconciler not initialized", shared.ErrServiceUnavailable)
	}

	target, err := e.store.Resolve(ctx, cs.source)
	if err != nil {
		return err
	}

	report, err := e.reconciler.Commit(ctx, target, cs.status, cs.mode, progress)
	if err != nil {
		return err
	}

	e.writeReport(cs, report)
	return nil
}

func (e *Executor) writeReport(cs compiledStep, report *models.MutationReport) {
	fmt.Fprintf(e.output, "commit %s %s (%s): %d succeeded, %d skipped, %d failed\n",
		cs.mode, cs.source, cs.status, report.Succeeded(), report.Skipped(), report.Failed())

	for _, result := range report.Results {
		if result.Outcome == models.OutcomeFailed {
			fmt.Fprintf(e.output, "  ✗ %s (%d): %v\n", result.Title, result.MediaID, result.Err)
		}
	}
}

func (e *Executor) runPrint(ctx context.Context, cs compiledStep) error {
	records, err := e.store.Resolve(ctx, cs.source)
	if err != nil {
		return err
	}

	var out []byte
	switch cs.format {
	case "csv":
		out, err = formatter.ExportToCSV(records)
	case "markdown":
		out = formatter.ExportToMarkdown(cs.source, records)
	default:
		out = formatter.ExportToText(cs.source, records)
	}
	if err != nil {
		return err
	}

	if _, err := e.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
