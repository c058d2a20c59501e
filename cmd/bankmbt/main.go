// Command bankmbt replays recorded ITF traces against the bank ledger
// model.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/bankmbt/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
