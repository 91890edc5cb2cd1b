// Command propriosim runs proprioceptive node simulations.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/propriosim/propriosim/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
