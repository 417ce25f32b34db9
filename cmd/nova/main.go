package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"nova/internal/diagnostics"
	novaerrors "nova/internal/errors"
	"nova/internal/interp"
	"nova/internal/lexer"
	"nova/internal/module"
	"nova/internal/parser"
	"nova/internal/repl"
	"nova/internal/stdlib"
)

const version = "1.0.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		repl.Start(version)
		return
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Printf("Nova %s\n", version)
	case "help", "--help", "-h":
		showUsage()
	case "repl":
		repl.Start(version)
	case "check":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: nova check <file>")
			os.Exit(1)
		}
		checkFile(args[1])
	case "run":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: nova run <file>")
			os.Exit(1)
		}
		runFile(args[1])
	default:
		runFile(args[0])
	}
}

func showUsage() {
	fmt.Print(`Nova - a small scripting language

Usage:
  nova <file.nova>       run a script
  nova run <file.nova>   run a script
  nova check <file.nova> parse a script and report diagnostics
  nova repl              start the interactive shell (default)
  nova version           print the version
`)
}

func runFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fail(fmt.Errorf("cannot read %s: %v", path, err))
	}

	tokens, err := lexer.NewScannerWithFile(string(source), path).ScanTokens()
	if err != nil {
		fail(err)
	}
	program, err := parser.NewParserWithSource(tokens, string(source), path).Parse()
	if err != nil {
		fail(err)
	}

	i := interp.New()
	stdlib.RegisterAll(i)
	i.SetResolver(module.NewLoader(filepath.Dir(path)))

	if _, err := i.Run(program); err != nil {
		fail(err)
	}
}

// checkFile parses without running and prints coded diagnostics.
func checkFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fail(fmt.Errorf("cannot read %s: %v", path, err))
	}

	engine := diagnostics.NewEngine()
	tokens, err := lexer.NewScannerWithFile(string(source), path).ScanTokens()
	if err == nil {
		_, err = parser.NewParserWithSource(tokens, string(source), path).Parse()
	}
	if err != nil {
		if ne, ok := err.(*novaerrors.NovaError); ok {
			engine.Report(diagnostics.FromNovaError(ne))
		} else {
			engine.Error(err.Error(), novaerrors.SourceLocation{File: path})
		}
	}

	if engine.HasErrors() {
		fmt.Fprint(os.Stderr, engine.Render())
		os.Exit(1)
	}
	fmt.Printf("%s: syntax is valid\n", path)
}

func fail(err error) {
	msg := err.Error()
	if useColor() {
		msg = "\033[31m" + msg + "\033[0m"
	}
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func useColor() bool {
	if os.Getenv("NOVA_NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
