// Command alertrelayd runs the alert relay service standalone: it loads
// config, opens the Postgres-backed stores, wires the service registry, and
// serves the health/metrics endpoints until terminated. No event ingress is
// wired into this binary.
package main

import (
	"fmt"
	"os"

	"github.com/archway-network/alertrelay/cmd/alertrelayd/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
