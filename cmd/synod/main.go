// Command synod simulates single-decree Paxos.
package main

import "github.com/relab/synod/internal/cli"

func main() {
	cli.Execute()
}
