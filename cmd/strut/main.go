package main

import (
	"fmt"
	"os"

	"github.com/agiangrant/strut/cmd/strut/commands"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "init":
		err = commands.Init(args)
	case "check":
		err = commands.Check(args)
	case "frame":
		err = commands.Frame(args)
	case "dump":
		err = commands.Dump(args)
	case "run":
		err = commands.Run(args)
	case "version", "-v", "--version":
		fmt.Printf("strut version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`strut - retained-mode widget toolkit

Usage: strut <command> [options]

Commands:
  init      Write the default configuration
  check     Validate a config file and print the effective settings
  frame     Draw the demo scene headlessly and write the frames
  dump      Summarize a frame file
  run       Run the demo scene, streaming frames
  version   Print version information
  help      Show this help message

Examples:
  strut init -o strut.yaml           Write a YAML config
  strut check strut.toml             Validate strut.toml
  strut frame -scroll 3 -o demo.strt Scroll the demo view three lines and draw
  strut dump -items demo.strt        List the display items of each frame
  strut run -config strut.toml       Run, applying edits to strut.toml live`)
}
