package app

import (
	"context"

	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/infrastructure/backend"
	"github.com/task-sh/task-sh/internal/infrastructure/config"
	"github.com/task-sh/task-sh/internal/infrastructure/history"
	"github.com/task-sh/task-sh/internal/infrastructure/parse"
	"github.com/task-sh/task-sh/internal/infrastructure/prompt"
	"github.com/task-sh/task-sh/internal/infrastructure/safety"
	"github.com/task-sh/task-sh/internal/infrastructure/sysinfo"
	"github.com/task-sh/task-sh/internal/infrastructure/term"
	"github.com/task-sh/task-sh/internal/pkg/logger"
	"github.com/task-sh/task-sh/internal/ports"
	"github.com/task-sh/task-sh/internal/services"
)

// Container wires application services to infrastructure adapters.
type Container struct {
	Config   domain.Config
	Loader   *config.Loader
	Logger   ports.Logger
	Generate *services.GenerateService
	Doctor   *services.DoctorService
	History  ports.HistoryStore
	Spinner  *term.SpinnerClient
}

// BuildContainer constructs the dependency graph. The config file is read
// here, once; a missing file is created from the embedded default first.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	loader := config.NewLoader("")
	cfg, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose || cfg.Preferences.Verbose)
	machine := sysinfo.NewCollector()

	filter, err := safety.NewFilter(cfg.Security, log)
	if err != nil {
		return nil, err
	}

	// The spinner wraps the real client. With the fake-response override
	// there is no network wait to animate.
	client := backend.NewClient(cfg.Backend, log)
	spinner := term.NewSpinnerClient(client, cfg.Preferences.Spinner && cfg.Backend.FakeResponse == "")

	var store ports.HistoryStore
	if cfg.History.Enabled {
		store = history.NewSQLiteStore(cfg.History.Path, log)
	}

	generate := &services.GenerateService{
		ConfigProvider: loader,
		PromptBuilder:  prompt.NewBuilder(cfg, machine),
		Backend:        spinner,
		Parser:         parse.NewParser(),
		Filter:         filter,
		History:        store,
		Machine:        machine,
		Logger:         log,
	}

	doctor := &services.DoctorService{
		ConfigProvider: loader,
		Filter:         filter,
		History:        store,
		Machine:        machine,
	}

	return &Container{
		Config:   cfg,
		Loader:   loader,
		Logger:   log,
		Generate: generate,
		Doctor:   doctor,
		History:  store,
		Spinner:  spinner,
	}, nil
}
