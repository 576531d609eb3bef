// sisyphus supervises a crash-prone autonomous agent and bridges the
// terminal sessions it drives.
package main

import (
	"os"

	"github.com/bouldertools/sisyphus/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
