package main

import (
	"fmt"
	"os"

	"github.com/slipwayhq/slipway/pkg/usage"
)

/*
Exit codes:
0 - No errors (including nothing-to-do runs)
1 - Missing token or stack configuration
2 - Missing CI context
3 - Failed to parse CI context
4 - Failed to load stack mapping
5 - Stack action failed
6 - Pulumi command failed
7 - Deployment succeeded but results could not be reported
8 - Command execution failed
10 - No CI detected and no stack supplied
*/

func main() {
	if len(os.Args) == 1 {
		os.Args = append([]string{os.Args[0]}, "default")
	}
	if err := rootCmd.Execute(); err != nil {
		usage.ReportErrorAndExit("", fmt.Sprintf("Error occured during command exec: %v", err), 8)
	}
}
