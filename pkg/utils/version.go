package utils

import "fmt"

var version = "0.2.1"

// GetVersion returns the current version of the package
func GetVersion() string {
	return fmt.Sprintf("you are using slipway version %s", version)
}
