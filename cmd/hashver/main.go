// Hashver computes content-derived versions for the modules of a Maven
// project and decides which modules need building.
package main

import "github.com/albertocavalcante/hashver/cmd/hashver/internal/cli"

func main() {
	cli.Execute()
}
