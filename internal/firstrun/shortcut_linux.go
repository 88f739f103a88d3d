//go:build linux

package firstrun

import (
	"fmt"
	"os"
)

const desktopEntryTemplate = `[Desktop Entry]
Version=1.0
Type=Application
Name=%s
Exec=%q %%U
Terminal=false
Categories=Network;WebBrowser;
`

func createShortcut(path, target, name string) error {
	entry := fmt.Sprintf(desktopEntryTemplate, name, target)
	return os.WriteFile(path, []byte(entry), 0755)
}
