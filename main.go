package main

import (
	"os"

	"github.com/hpkotak/migrationguard/cmd"
)

func main() {
	os.Exit(cmd.ExitCode(cmd.Execute()))
}
