package main

import (
	"github.com/netxfw/saf/cmd/saf/commands"
)

func main() {
	commands.Execute()
}
