// This is the main-driver for our stack calculator.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/skx/clacjit/jit"
	"github.com/skx/clacjit/lexer"
	"github.com/skx/clacjit/vm"
)

func main() {

	//
	// Look for flags.
	//
	useJIT := flag.Bool("jit", false, "Compile user-defined words to native code instead of interpreting them.")
	debug := flag.Bool("debug", false, "Narrate definition compilation to stdout.")
	timing := flag.Bool("timing", false, "Report how long evaluation took.")
	flag.Parse()

	//
	// Build the execution state, wiring in the JIT backend only if asked.
	//
	opts := []vm.Option{vm.WithOutput(os.Stdout)}
	if *debug {
		opts = append(opts, vm.WithLogf(func(mess string, args ...interface{}) {
			fmt.Fprintf(os.Stdout, mess+"\n", args...)
		}))
	}
	if *useJIT {
		backend := jit.New()
		backend.SetDebug(*debug)
		opts = append(opts, vm.WithJIT(backend))
	}
	state := vm.New(opts...)

	//
	// A filename argument means "load and run this program"; no
	// arguments means "read a program from stdin, one line at a time".
	//
	if len(flag.Args()) == 1 {
		runFile(state, flag.Args()[0], *timing)
		return
	}

	repl(state, *timing)
}

// runFile loads a whole program from path, evaluates it once, and prints
// the final stack.
func runFile(state *vm.State, path string, timing bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading %s: %s\n", path, err)
		os.Exit(1)
	}

	state.Parse(lexer.Tokenize(string(data)))

	start := time.Now()
	err = vm.Run(state.Eval)
	elapsed := time.Since(start)

	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	state.PrintStack()
	if timing {
		fmt.Printf("took %s\n", elapsed)
	}
}

// repl reads lines from stdin until EOF, parsing and evaluating each in
// turn against the same State, printing the stack after every line.
func repl(state *vm.State, timing bool) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		state.Parse(lexer.Tokenize(line))

		start := time.Now()
		err := vm.Run(state.Eval)
		elapsed := time.Since(start)

		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			continue
		}

		state.PrintStack()
		if timing {
			fmt.Printf("took %s\n", elapsed)
		}
	}
}
