package main

import (
	"github.com/ssvlabs/coa-proof/cli"
)

var (
	// AppName is the application name
	AppName = "coa-proof"

	// Version is the app version
	Version = "v0.1.0"
)

func main() {
	cli.Execute(AppName, Version)
}
