// Command nolemma is the operator entry point: serve a sequencer, drive
// traffic and verification against one, or run both in a single demo
// process.
package main

import "github.com/ardanlabs/nolemma/app/nolemma/cmd"

func main() {
	cmd.Execute()
}
