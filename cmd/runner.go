package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"aniq/internal/catalog"
	"aniq/internal/services"
	"aniq/internal/shared"
	"aniq/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	anilist    services.ListService
	source     services.CatalogSource
	catalog    *catalog.Store
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	AniList    services.ListService
	Source     services.CatalogSource
	Catalog    *catalog.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration. When no
// list service is supplied, an AniList client is built from the configured
// access token.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.AniList == nil {
		client := services.NewAniListClient("", opts.Config.Credentials.AniList.AccessToken, opts.HTTPClient)
		opts.AniList = client
		if opts.Source == nil {
			opts.Source = client
		}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		anilist:    opts.AniList,
		source:     opts.Source,
		catalog:    opts.Catalog,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// openCatalog opens the snapshot store at the configured path on first use.
func (r *Runner) openCatalog() (*catalog.Store, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	path := r.config.Catalog.Path
	if path == "" {
		path = "catalog.db"
	}

	store, err := catalog.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog at %s: %w", path, err)
	}

	r.catalog = store
	return store, nil
}

// catalogService adapts the lazily opened store to the interface the
// executor takes, keeping the interface value nil when no store exists.
func (r *Runner) catalogService() services.Catalog {
	store, err := r.openCatalog()
	if err != nil {
		r.logger.Debug("catalog unavailable", "err", err)
		return nil
	}
	return store
}

// newReconciler builds a reconciler from the configured remote settings.
func (r *Runner) newReconciler() *tasks.Reconciler {
	return tasks.NewReconciler(tasks.ReconcilerOpts{
		List:        r.anilist,
		RateLimit:   r.config.Remote.RateLimit,
		MaxAttempts: r.config.Remote.MaxAttempts,
		BaseBackoff: time.Duration(r.config.Remote.BaseBackoffMS) * time.Millisecond,
		Logger:      r.logger,
	})
}

// newExecutor builds a pipeline executor wired to the runner's collaborators.
func (r *Runner) newExecutor() *tasks.Executor {
	return tasks.NewExecutor(tasks.ExecutorOpts{
		Catalog:    r.catalogService(),
		List:       r.anilist,
		Reconciler: r.newReconciler(),
		Output:     r.output,
		Logger:     r.logger,
	})
}

// saveToken persists a fresh access token to the loaded config file.
func (r *Runner) saveToken(token string) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrInvalidConfig)
	}

	r.config.Credentials.AniList.AccessToken = token

	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
