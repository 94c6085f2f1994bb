package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/internal/agent"
	"github.com/ShayCichocki/agentnexus/internal/config"
	"github.com/ShayCichocki/agentnexus/internal/decompose"
	"github.com/ShayCichocki/agentnexus/internal/engine"
	"github.com/ShayCichocki/agentnexus/internal/exec"
	"github.com/ShayCichocki/agentnexus/internal/llm"
	"github.com/ShayCichocki/agentnexus/internal/logging"
	"github.com/ShayCichocki/agentnexus/internal/orchestrator"
	"github.com/ShayCichocki/agentnexus/internal/storage"
	"github.com/ShayCichocki/agentnexus/internal/validation"
)

// app holds the configuration and shared collaborators for one command.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	runner exec.CommandRunner
	store  *storage.Store
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Logging.Enabled = true
		cfg.Logging.Level = "debug"
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return &app{cfg: cfg, logger: logger, runner: exec.NewRunner()}, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("closing artifact store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func (a *app) engine() *engine.Engine {
	return engine.NewFromConfig(a.cfg.Execution, a.logger)
}

func (a *app) validator() (*validation.Validator, validation.Chain) {
	return validation.NewFromConfig(a.cfg.Validation, a.cfg.Execution.Interpreter, a.runner, a.logger)
}

func (a *app) artifactStore() (*storage.Store, error) {
	if a.store != nil || !a.cfg.Storage.Enabled {
		return a.store, nil
	}
	s, err := storage.OpenFromConfig(a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("opening artifact store: %w", err)
	}
	a.store = s
	return s, nil
}

// deps builds the collaborators shared by code-generating agents.
func (a *app) deps() (agent.Deps, error) {
	transport, err := llm.NewFromConfig(a.cfg, a.logger)
	if err != nil {
		if errors.Is(err, config.ErrNoAPIKey) {
			return agent.Deps{}, fmt.Errorf("%w: set NEXUS_MODEL_API_KEY or the provider's key variable", err)
		}
		return agent.Deps{}, err
	}

	v, chain := a.validator()
	deps := agent.Deps{
		Transport: transport,
		Validator: v,
		Executor:  a.engine(),
		Formatter: chain,
		Logger:    a.logger,
	}

	store, err := a.artifactStore()
	if err != nil {
		return agent.Deps{}, err
	}
	if store != nil {
		deps.Store = store
	}
	return deps, nil
}

// catalog returns the built-in roles plus custom agents from agents_file.
func (a *app) catalog(deps agent.Deps) (agent.Catalog, error) {
	c := agent.NewCatalog(deps, agent.WithExecuteValid(a.cfg.Execution.ExecuteValid))
	if a.cfg.AgentsFile == "" {
		return c, nil
	}
	defs, err := agent.LoadDefinitions(a.cfg.AgentsFile)
	if err != nil {
		return nil, err
	}
	for _, name := range c.AddCustom(defs, deps) {
		a.logger.Warn("custom agent shadows a built-in role, skipped", zap.String("agent", name))
	}
	return c, nil
}

// modelFree lists the roles that never call the model.
var modelFree = map[string]bool{
	agent.RoleDecomposer:    true,
	decompose.RoleValidator: true,
	decompose.RoleTester:    true,
	decompose.RoleAuditor:   true,
}

func needsModel(names []string) bool {
	for _, n := range names {
		if !modelFree[n] {
			return true
		}
	}
	return false
}

// orchestrator spawns every name in names and returns a ready Orchestrator.
// A missing model configuration is only an error when a stage needs it.
func (a *app) orchestrator(names []string, opts ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	deps, err := a.deps()
	if err != nil {
		if needsModel(names) {
			return nil, err
		}
		a.logger.Debug("model transport unavailable", zap.Error(err))
		deps = agent.Deps{Logger: a.logger}
	}
	c, err := a.catalog(deps)
	if err != nil {
		return nil, err
	}

	reg := orchestrator.NewRegistry()
	if missing := reg.SpawnCatalog(c, names...); len(missing) > 0 {
		a.logger.Warn("no agent available for some stages", zap.Strings("agents", missing))
	}

	base := []orchestrator.Option{
		orchestrator.WithRegistry(reg),
		orchestrator.WithLogger(a.logger),
		orchestrator.WithMaxWorkers(a.cfg.Pipeline.MaxWorkers),
	}
	return orchestrator.New(append(base, opts...)...), nil
}
