package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "join":
		runJoin(os.Args[2:])
	case "detect":
		runDetect(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [options]

Commands:
  join      Join a meeting and monitor it until it ends
  detect    Detect the platform and meeting code of a meeting URL

Run '%s <command> -h' for more information on a command.
`, os.Args[0], os.Args[0])
}
