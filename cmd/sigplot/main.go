package main

import (
	"github.com/panyam/sigplot/cmd/sigplot/commands"
)

func main() {
	commands.Execute()
}
