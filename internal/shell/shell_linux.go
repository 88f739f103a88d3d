//go:build linux

package shell

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const entryTemplate = `[Desktop Entry]
Version=1.0
Type=Application
Name={name}
Exec="{exec}" %U
Terminal=false
NoDisplay=true
MimeType={mime}
`

// linuxManager registers a .desktop entry through xdg-utils.
type linuxManager struct {
	app App
	run func(name string, args ...string) ([]byte, error)
}

// New returns a Manager that uses xdg-settings and xdg-mime.
func New(app App) Manager {
	return &linuxManager{app: app, run: runCommand}
}

func runCommand(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

func (l *linuxManager) entryName() string {
	return strings.ToLower(l.app.ProductName) + "-handler.desktop"
}

func (l *linuxManager) entryPath() string {
	data := os.Getenv("XDG_DATA_HOME")
	if data == "" {
		home, _ := os.UserHomeDir()
		data = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(data, "applications", l.entryName())
}

func (l *linuxManager) mimeTypes() []string {
	var types []string
	for _, s := range l.app.Schemes {
		types = append(types, "x-scheme-handler/"+s)
	}
	if len(l.app.FileExtensions) > 0 {
		types = append(types, "text/html", "application/xhtml+xml")
	}
	return types
}

// SetAsDefault writes the handler entry and makes it the default browser
// and the default for every scheme and type.
func (l *linuxManager) SetAsDefault() error {
	path := l.entryPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating applications directory: %w", err)
	}
	types := l.mimeTypes()
	entry := strings.NewReplacer(
		"{name}", l.app.ProductName,
		"{exec}", l.app.Executable,
		"{mime}", strings.Join(types, ";")+";",
	).Replace(entryTemplate)
	if err := os.WriteFile(path, []byte(entry), 0644); err != nil {
		return fmt.Errorf("writing desktop entry: %w", err)
	}

	commands := [][]string{{"xdg-settings", "set", "default-web-browser", l.entryName()}}
	if len(types) > 0 {
		commands = append(commands, append([]string{"xdg-mime", "default", l.entryName()}, types...))
	}
	for _, args := range commands {
		if _, err := l.run(args[0], args[1:]...); err != nil {
			return fmt.Errorf("running %s: %w", strings.Join(args, " "), err)
		}
	}
	return nil
}

// IsDefault asks xdg-settings for the default browser.
func (l *linuxManager) IsDefault() (bool, error) {
	out, err := l.run("xdg-settings", "get", "default-web-browser")
	if err != nil {
		return false, fmt.Errorf("running xdg-settings: %w", err)
	}
	return strings.TrimSpace(string(out)) == l.entryName(), nil
}
