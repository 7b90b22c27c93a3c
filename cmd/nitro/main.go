// Package main provides the headless Nitro harness: it loads a ROM,
// direct-boots the core, and drives frames without a display.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/nitrolab/nitro/core"
	"github.com/nitrolab/nitro/loader"
	"github.com/nitrolab/nitro/sched"
)

// Global cycles per frame: one NDS scanline is 2130 global cycles and a
// frame has 263 of them. The GBA value is its classic 280896-cycle frame.
const (
	ndsFrameCycles = 2130 * 263
	gbaFrameCycles = 280896
)

// Config is the optional JSON harness configuration.
type Config struct {
	// Frames is how many frames to run before exiting.
	Frames uint64 `json:"frames"`

	// DirectBoot skips the BIOS and jumps to the ROM entry points.
	DirectBoot bool `json:"direct_boot"`
}

var (
	frames     = flag.Uint64("frames", 60, "Number of frames to run")
	directBoot = flag.Bool("direct", true, "Direct-boot the ROM, skipping the BIOS")
	configPath = flag.String("config", "", "Path to a JSON harness configuration file")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: nitro [options] <rom.nds|rom.gba>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := Config{Frames: *frames, DirectBoot: *directBoot}
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	prog, err := loader.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ROM: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", prog.Title)
		fmt.Printf("ARM9 entry: 0x%08X  ARM7 entry: 0x%08X\n",
			prog.Arm9.Entry, prog.Arm7.Entry)
	}

	run(prog, cfg)
}

// loadConfig decodes the JSON harness configuration.
func loadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

// run boots the core and drives it for the configured number of frames.
func run(prog *loader.Program, cfg Config) {
	mem := newFlatMemory()
	mem.load(prog.Arm9.LoadAddr, prog.Arm9.Data)
	mem.load(prog.Arm7.LoadAddr, prog.Arm7.Data)

	c := core.New(mem, core.WithCp15(stubCp15{}))
	c.Init()

	frameCycles := uint64(ndsFrameCycles)
	if prog.Gba {
		c.EnterGbaMode()
		frameCycles = gbaFrameCycles
	} else {
		// Direct boot reads the entry addresses from the mirrored header.
		mem.load(0x27FFE00, prog.Header)
	}

	if cfg.DirectBoot && !prog.Gba {
		c.DirectBoot()
	}

	// The frame task paces the driver: each firing ends one frame loop.
	var frameTask sched.Task
	frameTask = sched.Task{
		Run: func() {
			c.Stop()
			c.Sched.Schedule(&frameTask, frameCycles)
		},
		Name: "frame end",
	}
	c.Sched.Schedule(&frameTask, frameCycles)

	for i := uint64(0); i < cfg.Frames; i++ {
		if prog.Gba {
			c.RunGbaFrame()
		} else {
			c.RunNdsFrame()
		}
	}

	stats := c.Stats()
	arm9 := c.Arm9.Stats()
	arm7 := c.Arm7.Stats()
	fmt.Printf("Frames:            %d\n", stats.Frames)
	fmt.Printf("Tasks run:         %d\n", stats.TasksRun)
	fmt.Printf("ARM9 instructions: %d\n", arm9.Instructions)
	fmt.Printf("ARM7 instructions: %d\n", arm7.Instructions)
}
