// Command cachectl inspects and maintains the shared cache used by the API server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, nil).Execute(); err != nil {
		os.Exit(1)
	}
}
