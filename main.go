package main

import (
	"github.com/trusttrade/trusttrade/cmd"
)

func main() {
	cmd.Execute()
}
