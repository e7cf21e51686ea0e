package main

import (
	"flag"
	"fmt"
	"minivm/internal/compiler"
	"minivm/internal/config"
	"minivm/internal/logger"
	"minivm/pkg/color"
	"os"

	"github.com/charmbracelet/log"
)

// Main entry point for the minivm toolchain.
func main() {
	options := compiler.Compiler{}
	var configFile string

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode (debug logs and IR dump)")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.BoolVar(&options.ShouldRun, "r", false, "Run the program")
	flag.BoolVar(&options.ShouldDebug, "d", false, "Run the program under the debugger")
	flag.BoolVar(&options.ShouldCompile, "c", false, "Compile to a bytecode image")
	flag.BoolVar(&options.StartShell, "s", false, "Start the interactive program shell")
	flag.StringVar(&options.ImageFile, "i", "", "Load a bytecode image instead of a source file")
	flag.StringVar(&options.OutputFile, "o", "a.mvb", "Output image name")
	flag.IntVar(&options.MaxSteps, "m", 0, "Maximum VM steps (0 uses the configured bound)")
	flag.StringVar(&configFile, "config", "", "Configuration file (default ./"+config.DefaultFile+" if present)")

	flag.Parse()
	args := flag.Args()

	logger.Init(logger.Options{Verbose: options.Verbose, NoColor: options.NoColor})
	if options.Help {
		fmt.Printf("Usage: %s [options] <file>\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	options.Config = cfg

	if options.NoColor || !cfg.ColorEnabled() {
		color.EnableColor(false)
		logger.Init(logger.Options{Verbose: options.Verbose, NoColor: true})
	}

	if len(args) > 0 {
		options.SourceFile = args[0]
	}

	if options.StartShell {
		if err := options.Shell(); err != nil {
			log.Fatal("Shell failed", "error", err)
		}
		return
	}

	if options.SourceFile == "" && options.ImageFile == "" {
		log.Fatal("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	if err := options.Compile(); err != nil {
		log.Fatal("Compilation failed", "error", err)
	}
}
