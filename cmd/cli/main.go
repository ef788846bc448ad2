package main

import (
	"github.com/allocview/cmd/cli/cmd"
)

func main() {
	cmd.Execute()
}
