// cmd/fusionsite/main.go
package main

import (
	"fusionsite/internal/appshell"
	"fusionsite/internal/cli"
)

func main() { appshell.Main(cli.RunContext) }
