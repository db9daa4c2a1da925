// Package main is the entry point for the ddlctl CLI.
package main

import (
	"os"

	"redshift-ddl/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
