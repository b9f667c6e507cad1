// repoman keeps AI coding assistant config files in sync from a
// single declarative rule registry.
//
// Usage:
//
//	repoman init           # create the workspace layout
//	repoman rule add ...   # manage rules
//	repoman check          # classify every projection
//	repoman sync           # project rules into tool config files
//	repoman fix            # repair drift
//	repoman diff           # preview pending changes
//	repoman serve          # start the MCP server (stdio transport)
package main

import (
	"os"

	"github.com/wgergely/repoman/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
