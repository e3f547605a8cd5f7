package main

import (
	"os"

	"ipc-charts/cmd"
	"ipc-charts/internal/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logging.GetLogger().WithError(err).Error("Command execution failed")
		os.Exit(1)
	}
}
