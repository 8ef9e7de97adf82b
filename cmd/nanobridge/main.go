package main

import "github.com/nanobridge-dev/nanobridge/internal/cli"

func main() {
	cli.Execute()
}
