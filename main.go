package main

import (
	"os"

	"ai-pulse/cmd"
)

// version 构建时通过ldflags注入
var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
