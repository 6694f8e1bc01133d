// Command farmkeeper manages farm records from the command line.
package main

import "github.com/mesh-intelligence/farmkeeper/internal/cli"

func main() {
	cli.Execute()
}
