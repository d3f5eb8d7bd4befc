package runtime

import (
	"fmt"

	"github.com/adrg/xdg"
)

const (
	XDGName = "trusttrade"
)

// File returns the path of filename in the user's runtime directory,
// creating parent directories as needed.
func File(filename string) (string, error) {
	return xdg.RuntimeFile(fmt.Sprintf("%s/%s", XDGName, filename))
}

// StateFile is like File but for data that should outlive a login session,
// such as logs.
func StateFile(filename string) (string, error) {
	return xdg.StateFile(fmt.Sprintf("%s/%s", XDGName, filename))
}
