// Package main provides the entry point for Nitro.
// Nitro is a dual-ARM NDS/GBA interpreter core with a cycle-driven
// event scheduler.
//
// For the full CLI, use: go run ./cmd/nitro
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("Nitro - NDS/GBA dual-ARM interpreter core")
	fmt.Println("")
	fmt.Println("Usage: nitro [options] <rom.nds|rom.gba>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -frames    Number of frames to run")
	fmt.Println("  -direct    Direct-boot the ROM, skipping the BIOS")
	fmt.Println("  -config    Path to a JSON harness configuration file")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/nitro' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/nitro' instead.")
	}
}
