// main is the entry point for the entran CLI.
package main

import (
	"github.com/huangsam/entran/cmd"
	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/iocache"
)

func main() {
	defer iocache.CloseResults()
	cmd.SetResultManager(iocache.Manager)

	if err := cmd.Execute(); err != nil {
		iocache.CloseResults()
		contract.LogFatal("Command failed", err)
	}
}
