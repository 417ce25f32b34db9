// Package repl implements the interactive shell.
package repl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"nova/internal/interp"
	"nova/internal/lexer"
	"nova/internal/module"
	"nova/internal/parser"
	"nova/internal/stdlib"
)

const helpText = `Commands:
  help        show this help
  exit, quit  leave the repl

Everything else is evaluated as Nova code. Bindings persist
across lines.`

// Start runs the read-eval-print loop until exit or EOF.
func Start(version string) {
	fmt.Printf("Nova %s | type 'exit' to quit\n", version)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := historyFile()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	i := interp.New()
	stdlib.RegisterAll(i)
	if wd, err := os.Getwd(); err == nil {
		i.SetResolver(module.NewLoader(wd))
	}

	for {
		input, err := line.Prompt("nova> ")
		if err != nil {
			// liner.ErrPromptAborted on Ctrl-C, io.EOF on Ctrl-D
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(input)
		switch trimmed {
		case "":
			continue
		case "exit", "quit":
			saveHistory(line, historyPath)
			return
		case "help":
			fmt.Println(helpText)
			continue
		}
		line.AppendHistory(input)

		result, err := evalLine(i, input)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if result != nil {
			fmt.Println(interp.FormatValue(result))
		}
	}
	saveHistory(line, historyPath)
}

func evalLine(i *interp.Interpreter, source string) (interp.Value, error) {
	tokens, err := lexer.NewScannerWithFile(source, "repl").ScanTokens()
	if err != nil {
		return nil, err
	}
	program, err := parser.NewParserWithSource(tokens, source, "repl").Parse()
	if err != nil {
		return nil, err
	}
	return i.Run(program)
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nova_history")
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if f, err := os.Create(path); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}
