package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/younwookim/scenekit/internal/application/clock"
	"github.com/younwookim/scenekit/internal/application/editor"
	"github.com/younwookim/scenekit/internal/application/lifecycle"
	"github.com/younwookim/scenekit/internal/domain/scene"
	"github.com/younwookim/scenekit/internal/infrastructure/config"
	"github.com/younwookim/scenekit/internal/infrastructure/serializer"
	"github.com/younwookim/scenekit/internal/script"
)

func main() {
	// Parse command line flags
	projectFlag := flag.String("project", "", "Project directory (default: embedded sample project)")
	sceneFlag := flag.String("scene", "", "Scene file relative to the project (default: project startScene)")
	flag.Parse()

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}
	if *projectFlag != "" {
		env.ProjectDir = *projectFlag
	}
	if *sceneFlag != "" {
		env.Scene = *sceneFlag
	}

	logger, err := config.NewLogger(env.LogLevel, env.DevLog)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	app, err := newEditor(env, logger)
	if err != nil {
		logger.Fatal("failed to start editor", zap.Error(err))
	}

	ebiten.SetWindowSize(app.display.ScreenWidth, app.display.ScreenHeight)
	ebiten.SetWindowTitle(app.title)
	ebiten.SetTPS(app.display.Framerate)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(app.editor); err != nil {
		logger.Fatal("editor stopped", zap.Error(err))
	}
}

type application struct {
	editor  *editor.Editor
	ctrl    *lifecycle.Controller
	display config.DisplayConfig
	title   string
}

// newLoader opens the project directory, or the embedded sample project
func newLoader(dir string) (*config.Loader, error) {
	if dir != "" {
		return config.NewLoader(dir), nil
	}
	fsys, err := fs.Sub(projectFS, "project")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded project: %w", err)
	}
	return config.NewFSLoader(fsys, "project"), nil
}

// newEditor wires the scene, runtimes and lifecycle controller into an editor
func newEditor(env config.Env, logger *zap.Logger) (*application, error) {
	loader, err := newLoader(env.ProjectDir)
	if err != nil {
		return nil, err
	}
	cfg, err := loader.LoadProject()
	if err != nil {
		return nil, err
	}
	env.Apply(cfg)

	ser := serializer.New()
	factory := scene.NewFactory(loader.FS(), ser, cfg.SimulationSettings())
	active, err := factory.Create(cfg.StartScene)
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	scripts := script.NewRuntime(script.NewLibrary(loader.FS(), cfg.ScriptsDir), clk, logger)
	bridge := lifecycle.NewRuntimeBridge(scripts, logger)
	ctrl := lifecycle.NewController(active, lifecycle.NewSnapshotStore(ser), clk, bridge, logger)

	logger.Info("project loaded",
		zap.String("project", cfg.Name),
		zap.String("scene", active.Name),
		zap.Int("entities", active.World.Count()),
		zap.Bool("embedded", env.ProjectDir == ""))

	return &application{
		editor:  editor.New(ctrl, editor.KeyboardInput{}, ser, env.ProjectDir, cfg.Display, logger),
		ctrl:    ctrl,
		display: cfg.Display,
		title:   fmt.Sprintf("scenekit - %s", cfg.Name),
	}, nil
}
