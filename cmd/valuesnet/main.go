// Command valuesnet is the behaviour/outcome/value network analysis CLI and server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/danielpatrickdp/valuesnet/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(context.Background(), version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
