// Package main is the entry point for the Vitalis desktop launcher.
// It resolves configuration, builds the logger and hands the launch to
// startup.BrowserMain, exiting with the code it returns.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/desktop/internal/config"
	"github.com/Guliveer/vitalis/desktop/internal/dialog"
	"github.com/Guliveer/vitalis/desktop/internal/instance"
	"github.com/Guliveer/vitalis/desktop/internal/logging"
	"github.com/Guliveer/vitalis/desktop/internal/resultcodes"
	"github.com/Guliveer/vitalis/desktop/internal/startup"
	"github.com/Guliveer/vitalis/desktop/internal/switches"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() (exitCode int) {
	cmd, err := switches.Parse(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		switches.Usage(os.Stderr)
		return resultcodes.InvalidCommandLine.Int()
	}

	if cmd.HasSwitch(switches.Version) {
		fmt.Printf("vitalis %s\n", version)
		return resultcodes.NormalExit.Int()
	}

	cli := config.CLIOverrides{UserDataDir: cmd.SwitchValue(switches.UserDataDir)}
	var cfg *config.Config
	if cmd.HasSwitch(switches.Config) {
		cfg, err = config.LoadLayered(cli, embeddedConfig, cmd.SwitchValue(switches.Config))
	} else {
		cfg, err = config.LoadLayered(cli, embeddedConfig)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return resultcodes.MissingData.Int()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return resultcodes.MissingPath.Int()
	}

	logger := logging.New(cfg.Logging)
	defer logger.Sync()
	defer func() {
		// Fatal startup states and the crash test end here.
		if r := recover(); r != nil {
			logger.Error("Launch aborted", zap.Any("panic", r), zap.Stack("stack"))
			exitCode = resultcodes.Killed.Int()
		}
	}()

	logger.Info("Starting Vitalis",
		zap.String("version", version),
		zap.String("user_data_dir", cfg.Paths.UserDataDir))

	exe, err := os.Executable()
	if err != nil {
		logger.Error("Cannot resolve own executable", zap.Error(err))
		return resultcodes.MissingPath.Int()
	}
	exe = instance.CanonicalExecutable(exe)
	cwd, _ := os.Getwd()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := &startup.Main{
		Config:     cfg,
		Logger:     logger,
		Version:    version,
		Executable: exe,
		Cwd:        cwd,
		Prompter:   dialog.NewConsole(os.Stdin, os.Stderr),
	}
	code := startup.BrowserMain(ctx, m, cmd)
	logger.Info("Vitalis stopped", zap.Stringer("exit_code", code))
	return code.Int()
}
