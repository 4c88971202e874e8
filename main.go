package main

import (
	"github.com/profswitch/host/cmd"
)

func main() {
	cmd.Execute()
}
