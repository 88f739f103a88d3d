//go:build darwin

package shell

// darwinManager has no registration path without LaunchServices bindings.
type darwinManager struct{}

// New returns a Manager that reports ErrUnsupported.
func New(App) Manager { return darwinManager{} }

func (darwinManager) SetAsDefault() error { return ErrUnsupported }
func (darwinManager) IsDefault() (bool, error) { return false, ErrUnsupported }
