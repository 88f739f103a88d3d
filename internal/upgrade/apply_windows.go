//go:build windows

package upgrade

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

func (s *Swapper) swap(staged, current string) error {
	// A running executable can be renamed but not overwritten.
	oldPath := BackupPath(current)
	os.Remove(oldPath)

	if err := os.Rename(current, oldPath); err != nil {
		return fmt.Errorf("backup current binary: %w", err)
	}

	if err := os.Rename(staged, current); err != nil {
		s.logger.Error("Failed to place staged binary, rolling back", zap.Error(err))
		if rbErr := os.Rename(oldPath, current); rbErr != nil {
			s.logger.Error("Rollback also failed", zap.Error(rbErr))
		}
		return fmt.Errorf("place staged binary: %w", err)
	}
	return nil
}
