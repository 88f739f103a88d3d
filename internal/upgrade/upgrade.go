// Package upgrade promotes a staged executable into place at startup and
// relaunches the process under it. A background Stager downloads new
// releases and stages them for the next launch.
package upgrade

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// StagedPath is where a downloaded release waits for the next launch.
func StagedPath(executable string) string { return executable + ".new" }

// BackupPath holds the previous executable after a swap.
func BackupPath(executable string) string { return executable + ".old" }

// Swapper promotes staged executables.
type Swapper struct {
	logger *zap.Logger
}

// NewSwapper returns a Swapper.
func NewSwapper(logger *zap.Logger) *Swapper {
	return &Swapper{logger: logger.Named("upgrade")}
}

// SwapIfPresent moves the staged executable over executable, keeping the
// old one as a backup. swapped is false when nothing is staged. On error
// the original executable is restored.
func (s *Swapper) SwapIfPresent(executable string) (swapped bool, err error) {
	staged := StagedPath(executable)
	if _, err := os.Stat(staged); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking staged binary: %w", err)
	}

	if err := s.swap(staged, executable); err != nil {
		return false, err
	}
	s.logger.Info("Promoted staged binary", zap.String("path", executable))
	return true, nil
}

// relaunchCommand builds the command that restarts argv under executable.
func relaunchCommand(executable string, argv []string) *exec.Cmd {
	var args []string
	if len(argv) > 1 {
		args = argv[1:]
	}
	cmd := exec.Command(executable, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if wd, err := os.Getwd(); err == nil {
		cmd.Dir = wd
	}
	return cmd
}

// Relaunch starts executable with the arguments of argv (argv[0] is
// replaced) and does not wait for it.
func (s *Swapper) Relaunch(executable string, argv []string) error {
	cmd := relaunchCommand(executable, argv)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("relaunching %s: %w", executable, err)
	}
	s.logger.Info("Relaunched", zap.String("path", executable), zap.Int("pid", cmd.Process.Pid))
	return cmd.Process.Release()
}
