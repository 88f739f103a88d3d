// Package importer copies settings from another installation's profile into
// the current one.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/desktop/internal/dialog"
	"github.com/Guliveer/vitalis/desktop/internal/prefs"
	"github.com/Guliveer/vitalis/desktop/internal/profile"
	"github.com/Guliveer/vitalis/desktop/internal/resultcodes"
)

// ErrNoProfile is returned when the source holds no profile.
var ErrNoProfile = errors.New("no profile found at import source")

// copiedFiles are profile files imported verbatim when present.
var copiedFiles = []string{"Bookmarks", "Custom Dictionary.txt"}

// importedPrefs are profile preferences copied from the source.
var importedPrefs = []string{prefs.HomePage}

// Strings looks up localized text.
type Strings interface {
	String(key string) string
	StringF(key string, args ...string) string
}

// Importer runs settings imports.
type Importer struct {
	prompter dialog.Prompter
	strings  Strings
	logger   *zap.Logger
	now      func() time.Time
}

// New returns an Importer.
func New(prompter dialog.Prompter, strings Strings, logger *zap.Logger) *Importer {
	return &Importer{
		prompter: prompter,
		strings:  strings,
		logger:   logger.Named("importer"),
		now:      time.Now,
	}
}

// resolveSource accepts either a user data directory or a profile directory.
func resolveSource(source string) (string, error) {
	for _, dir := range []string{profile.DefaultProfileDir(source), source} {
		if _, err := os.Stat(filepath.Join(dir, profile.PreferencesFile)); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoProfile, source)
}

// ImportSettings copies preferences and profile files from source into
// target and records where they came from.
func (im *Importer) ImportSettings(ctx context.Context, source string, target *profile.Profile) error {
	if target == nil {
		return fmt.Errorf("import: no target profile")
	}
	dir, err := resolveSource(source)
	if err != nil {
		return err
	}
	if samePath(dir, target.Path()) {
		return fmt.Errorf("import: source is the current profile")
	}

	from, err := prefs.Load(filepath.Join(dir, profile.PreferencesFile))
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	prefs.RegisterProfile(from)

	to := target.Prefs()
	for _, name := range importedPrefs {
		to.SetString(name, from.GetString(name))
	}

	for _, name := range copiedFiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		copied, err := copyFile(filepath.Join(dir, name), filepath.Join(target.Path(), name))
		if err != nil {
			return fmt.Errorf("import %s: %w", name, err)
		}
		if copied {
			im.logger.Debug("Imported file", zap.String("name", name))
		}
	}

	to.SetString(prefs.ImportedFrom, dir)
	to.SetString(prefs.ImportedAt, im.now().UTC().Format(time.RFC3339))
	if err := to.Save(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	im.logger.Info("Imported settings", zap.String("source", dir), zap.String("target", target.Path()))
	return nil
}

// ImportWithUI runs the import flow with its own prompts. With an empty
// source the user is asked for one. The result is the process exit code.
func (im *Importer) ImportWithUI(ctx context.Context, source string, target *profile.Profile) resultcodes.Code {
	title := im.strings.String("product_name")
	if source == "" {
		dir, ok := im.prompter.AskDirectory(title, im.strings.String("import_source_prompt"), "")
		if !ok {
			im.logger.Info("Import cancelled")
			return resultcodes.ImporterCancel
		}
		source = dir
	}

	if err := im.ImportSettings(ctx, source, target); err != nil {
		im.logger.Error("Import failed", zap.String("source", source), zap.Error(err))
		im.prompter.Alert(title, im.strings.StringF("import_failed", source))
		return resultcodes.ImporterFailed
	}
	im.prompter.Alert(title, im.strings.StringF("import_done", source))
	return resultcodes.NormalExit
}

// copyFile copies src to dst, reporting false when src does not exist.
func copyFile(src, dst string) (bool, error) {
	in, err := os.Open(src)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return false, err
	}
	return true, out.Close()
}

func samePath(a, b string) bool {
	aa, errA := filepath.Abs(a)
	bb, errB := filepath.Abs(b)
	return errA == nil && errB == nil && aa == bb
}
