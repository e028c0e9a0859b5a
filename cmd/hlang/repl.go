package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/chazu/hlang/compiler"
	"github.com/chazu/hlang/vm"
)

const (
	historyFile = ".hlang_history"
	promptMain  = ">> "
	promptCont  = ".. "
)

var valueColor = color.New(color.FgCyan)

func runREPL(env *environment, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, "Hlang REPL (type :help for commands)")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	in := env.newInterpreter(stdout)
	for {
		src, ok := readInput(ln, env.tabWidth)
		if !ok {
			fmt.Fprintln(stdout)
			return exitOK
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit", ":q":
				return exitOK
			case ":reset":
				in = env.newInterpreter(stdout)
				fmt.Fprintln(stdout, "Global environment reset")
			case ":help", ":h":
				fmt.Fprintln(stdout, "REPL Commands:")
				fmt.Fprintln(stdout, "  :help, :h    Show this help")
				fmt.Fprintln(stdout, "  :reset       Discard every definition")
				fmt.Fprintln(stdout, "  :quit, :q    Exit REPL")
				fmt.Fprintln(stdout, "A line opening a block continues until an empty line.")
			default:
				fmt.Fprintf(stdout, "Unknown command: %s (type :help for commands)\n", trimmed)
			}
			continue
		}

		evalAndPrint(env, in, src, stdout, stderr)
	}
}

// evalAndPrint runs src and echoes the value of a trailing expression.
func evalAndPrint(env *environment, in *vm.Interpreter, src string, stdout, stderr io.Writer) {
	program, err := env.programs.Parse(src)
	if err != nil {
		printError(stderr, err)
		return
	}
	value, ok, err := in.Execute(program)
	if err != nil {
		printError(stderr, err)
		return
	}
	if ok && shouldEcho(program, value) {
		valueColor.Fprintln(stdout, vm.Stringify(value))
	}
}

// shouldEcho reports whether the REPL prints the value of a program's
// trailing expression. Assignments and results of nothing stay quiet.
func shouldEcho(program []compiler.Stmt, value vm.Value) bool {
	if value == nil || len(program) == 0 {
		return false
	}
	stmt, ok := program[len(program)-1].(*compiler.ExprStmt)
	if !ok {
		return false
	}
	switch stmt.Expr.(type) {
	case *compiler.Assign, *compiler.Set, *compiler.SetIndex:
		return false
	}
	return true
}

// readInput reads one entry. An entry that opens a block keeps reading
// until an empty line.
func readInput(ln *liner.State, tabWidth int) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
			b.WriteString(line)
			continue
		}

		b.WriteString(line)
		if !opensBlock(line, tabWidth) {
			return b.String(), true
		}
	}
}

// opensBlock reports whether src is an unfinished block header such as
// "if x" or "function f()", or a class header whose body may follow.
func opensBlock(src string, tabWidth int) bool {
	tokens, err := compiler.Tokenize(src, compiler.WithTabWidth(tabWidth))
	if err != nil {
		return false
	}
	if len(tokens) > 0 && tokens[0].Type == compiler.TokenClass {
		return true
	}
	_, err = compiler.NewParser(tokens).Parse()
	var syntaxErr *compiler.SyntaxError
	return errors.As(err, &syntaxErr) && strings.HasSuffix(syntaxErr.Message, "got end of input")
}
