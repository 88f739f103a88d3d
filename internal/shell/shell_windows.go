//go:build windows

package shell

import (
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// windowsManager registers a ProgID and client entry under HKCU.
type windowsManager struct {
	app App
}

// New returns a Manager that writes per-user registry associations.
func New(app App) Manager {
	return &windowsManager{app: app}
}

func (w *windowsManager) progID() string {
	return strings.ReplaceAll(w.app.ProductName, " ", "") + "HTML"
}

func (w *windowsManager) command() string {
	return fmt.Sprintf("\"%s\" \"%%1\"", w.app.Executable)
}

func setDefaultValue(path, value string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, path, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer k.Close()
	if err := k.SetStringValue("", value); err != nil {
		return fmt.Errorf("setting %s: %w", path, err)
	}
	return nil
}

// SetAsDefault registers the ProgID, points every scheme and extension at
// it and records the app as a start menu internet client.
func (w *windowsManager) SetAsDefault() error {
	classes := `Software\Classes\`
	prog := w.progID()

	if err := setDefaultValue(classes+prog, w.app.ProductName+" Document"); err != nil {
		return err
	}
	if err := setDefaultValue(classes+prog+`\shell\open\command`, w.command()); err != nil {
		return err
	}
	for _, ext := range w.app.FileExtensions {
		if err := setDefaultValue(classes+ext, prog); err != nil {
			return err
		}
	}
	for _, scheme := range w.app.Schemes {
		k, _, err := registry.CreateKey(registry.CURRENT_USER, classes+scheme, registry.SET_VALUE)
		if err != nil {
			return fmt.Errorf("creating scheme %s: %w", scheme, err)
		}
		err = k.SetStringValue("URL Protocol", "")
		k.Close()
		if err != nil {
			return fmt.Errorf("marking scheme %s: %w", scheme, err)
		}
		if err := setDefaultValue(classes+scheme+`\shell\open\command`, w.command()); err != nil {
			return err
		}
	}
	client := `Software\Clients\StartMenuInternet\` + w.app.ProductName
	if err := setDefaultValue(client+`\shell\open\command`, fmt.Sprintf("\"%s\"", w.app.Executable)); err != nil {
		return err
	}
	return nil
}

// IsDefault reports whether the http scheme opens our executable.
func (w *windowsManager) IsDefault() (bool, error) {
	if len(w.app.Schemes) == 0 {
		return false, nil
	}
	path := `Software\Classes\` + w.app.Schemes[0] + `\shell\open\command`
	k, err := registry.OpenKey(registry.CURRENT_USER, path, registry.QUERY_VALUE)
	if err != nil {
		return false, nil
	}
	defer k.Close()
	v, _, err := k.GetStringValue("")
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.EqualFold(v, w.command()), nil
}
