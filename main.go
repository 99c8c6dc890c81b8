package main

import (
	"github.com/gdpdash/gdpdash/cmd"
)

func main() {
	cmd.Execute()
}
