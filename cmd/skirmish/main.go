package main

import (
	"github.com/hexwall/skirmish/internal/cli"
)

func main() {
	cli.Execute()
}
