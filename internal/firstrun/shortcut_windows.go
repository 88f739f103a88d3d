//go:build windows

package firstrun

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// sFalse is returned by CoInitializeEx when COM is already initialized.
const sFalse = 1

func createShortcut(path, target, name string) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oerr *ole.OleError
		if !errors.As(err, &oerr) || oerr.Code() != sFalse {
			return fmt.Errorf("initializing COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return fmt.Errorf("creating WScript.Shell: %w", err)
	}
	defer unknown.Release()

	shell, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("querying WScript.Shell: %w", err)
	}
	defer shell.Release()

	v, err := oleutil.CallMethod(shell, "CreateShortcut", path)
	if err != nil {
		return fmt.Errorf("CreateShortcut: %w", err)
	}
	link := v.ToIDispatch()
	defer link.Release()

	props := []struct {
		name  string
		value string
	}{
		{"TargetPath", target},
		{"WorkingDirectory", filepath.Dir(target)},
		{"Description", name},
	}
	for _, p := range props {
		if _, err := oleutil.PutProperty(link, p.name, p.value); err != nil {
			return fmt.Errorf("setting %s: %w", p.name, err)
		}
	}
	if _, err := oleutil.CallMethod(link, "Save"); err != nil {
		return fmt.Errorf("saving shortcut: %w", err)
	}
	return nil
}
