// Package shell registers the app as the OS default handler for its URL
// schemes and file types.
package shell

import (
	"errors"

	"go.uber.org/zap"
)

// ErrUnsupported is returned where the OS offers no way to register.
var ErrUnsupported = errors.New("default handler registration is not supported on this platform")

// App describes what to register.
type App struct {
	ProductName    string
	Executable     string
	Schemes        []string
	FileExtensions []string
}

// Manager provides platform-specific default-handler registration.
type Manager interface {
	SetAsDefault() error
	IsDefault() (bool, error)
}

// VerifyInstallation logs whether the app is currently the default handler.
func VerifyInstallation(m Manager, logger *zap.Logger) bool {
	ok, err := m.IsDefault()
	if err != nil {
		logger.Debug("Could not determine default handler", zap.Error(err))
		return false
	}
	logger.Info("Default handler check", zap.Bool("is_default", ok))
	return ok
}
