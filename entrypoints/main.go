package main

import (
	"github.com/Laisky/kb-refresh/cmd"
)

func main() {
	cmd.Execute()
}
