package compiler

import (
	"errors"
	"fmt"
	"io"
	"minivm/internal/config"
	"minivm/pkg/codegen"
	"minivm/pkg/color"
	"minivm/pkg/debugger"
	"minivm/pkg/program"
	"minivm/pkg/prompt"
	"minivm/pkg/shell"
	"minivm/pkg/vm"
	"os"

	"github.com/charmbracelet/log"
)

type Compiler struct {
	Help          bool   // Show help message
	Verbose       bool   // Enable verbose output and print the IR
	NoColor       bool   // Disable colored output
	ShouldRun     bool   // Run the program and print its final state
	ShouldDebug   bool   // Attach the debugger instead of running
	ShouldCompile bool   // Write a bytecode image
	StartShell    bool   // Start the interactive program shell
	MaxSteps      int    // Step bound, 0 keeps the configured value
	ImageFile     string // Path to a bytecode image to load instead of a source file
	SourceFile    string // Path to the source file
	OutputFile    string // Path to the output image

	Config *config.Config // Loaded configuration, defaults when nil

	Stdin  io.Reader // Input for the debugger and shell, os.Stdin when nil
	Stdout io.Writer // Program output, os.Stdout when nil
}

func (opts *Compiler) out() io.Writer {
	if opts.Stdout == nil {
		return os.Stdout
	}
	return opts.Stdout
}

func (opts *Compiler) config() *config.Config {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	return opts.Config
}

// vmOptions merges the configuration with the command line
func (opts *Compiler) vmOptions() []vm.Option {
	vmOpts := opts.config().VMOptions()
	if opts.MaxSteps > 0 {
		vmOpts = append(vmOpts, vm.WithMaxSteps(opts.MaxSteps))
	}
	return vmOpts
}

// reader opens the line input for interactive sessions; the returned func releases it
func (opts *Compiler) reader() (prompt.LineReader, func()) {
	if opts.Stdin == nil && prompt.Interactive() {
		t := prompt.NewTerminal(opts.config().Debugger.History)

		// restore the terminal before a fatal runtime error exits the process
		fatal := vm.Fatal
		vm.Fatal = func(err error) {
			t.Close()
			fatal(err)
		}
		return t, func() {
			vm.Fatal = fatal
			t.Close()
		}
	}

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	return prompt.NewScanner(stdin, opts.out()), func() {}
}

// Compile processes the source file (or bytecode image), prints the IR when
// verbose, writes an image, and runs or debugs the program as requested.
func (opts *Compiler) Compile() error {
	out := opts.out()

	var (
		p   *program.Program
		err error
	)
	if opts.ImageFile != "" {
		p, err = opts.loadImage()
	} else {
		p, err = opts.compileSource()
	}
	if err != nil {
		return err
	}

	if opts.Verbose {
		fmt.Fprintln(out, color.GreenText("=== Generated IR ==="))
		if p.Sequence.Len() == 0 {
			fmt.Fprintln(out, color.GrayText("No code generated."))
		} else {
			p.Dump(out)
		}
	}

	if opts.ShouldCompile {
		if err := opts.writeImage(p.Sequence); err != nil {
			return err
		}
	}

	switch {
	case opts.ShouldDebug:
		in, closeReader := opts.reader()
		defer closeReader()
		return p.Debug(in, out, debugger.WithPrompt(opts.config().Debugger.Prompt))

	case opts.ShouldRun:
		return opts.run(p)
	}

	return nil
}

func (opts *Compiler) compileSource() (*program.Program, error) {
	log.Info("Processing file", "file", opts.SourceFile)

	input, err := os.ReadFile(opts.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", opts.SourceFile, err)
	}

	p := program.New(1, opts.SourceFile, string(input), opts.vmOptions()...)
	if err := p.Compile(); err != nil {
		fmt.Fprintln(opts.out(), color.BrightRedText("=== Compile Errors ==="))
		fmt.Fprintln(opts.out(), program.Describe(err))
		return nil, fmt.Errorf("compilation failed: %w", err)
	}
	return p, nil
}

func (opts *Compiler) loadImage() (*program.Program, error) {
	log.Info("Loading image", "file", opts.ImageFile)

	data, err := os.ReadFile(opts.ImageFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", opts.ImageFile, err)
	}

	seq, err := codegen.UnmarshalImage(data)
	if err != nil {
		return nil, fmt.Errorf("cannot load %s: %w", opts.ImageFile, err)
	}
	if err := codegen.Link(seq); err != nil {
		return nil, fmt.Errorf("cannot link %s: %w", opts.ImageFile, err)
	}

	return program.NewCompiled(1, opts.ImageFile, seq, opts.vmOptions()...), nil
}

func (opts *Compiler) writeImage(seq *codegen.Sequence) error {
	data, err := codegen.MarshalImage(seq)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.OutputFile, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", opts.OutputFile, err)
	}

	log.Info("Wrote image", "file", opts.OutputFile, "instructions", seq.Len(), "bytes", len(data))
	return nil
}

func (opts *Compiler) run(p *program.Program) error {
	out := opts.out()

	err := p.Run(out)
	switch {
	case err == nil:
		return nil

	case errors.Is(err, vm.ErrMaxStepsExceeded):
		fmt.Fprintln(out, color.YellowText("VM halted: possible infinite loop"))
		p.VM.PrintState(out)
		return nil

	case vm.IsFatal(err):
		vm.Fatal(err)
		return err

	default:
		return fmt.Errorf("execution failed: %w", err)
	}
}

// Shell starts the interactive program shell
func (opts *Compiler) Shell() error {
	in, closeReader := opts.reader()
	defer closeReader()

	table := program.NewTable(opts.vmOptions()...)
	sh := shell.New(table, in, opts.out(),
		shell.WithDebuggerOptions(debugger.WithPrompt(opts.config().Debugger.Prompt)))

	if opts.SourceFile != "" {
		if _, err := sh.Execute("submit " + opts.SourceFile); err != nil {
			return err
		}
	}

	return sh.Run()
}
