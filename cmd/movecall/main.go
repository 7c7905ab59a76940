/*
 * Cadence - The resource-oriented smart contract programming language
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// movecall inspects Move modules and encodes entry function calls.
//
// Usage:
//
//	movecall parse [-function name] [-format text|json|yaml] <descriptor> <module>
//	movecall abi [flags] [-format text|json|yaml|cbor] [-query jq] <address>::<module>
//	movecall encode [flags] [-omit-signers] [-type-arg tag]... [-format text|json|yaml] <descriptor> <module> [argument]...
package main

import (
	"context"
	goErrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
)

type environment struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	colors bool
}

type command struct {
	name        string
	description string
	run         func(env *environment, args []string) error
}

var commands = []command{
	{
		name:        "parse",
		description: "parse a function descriptor",
		run:         runParse,
	},
	{
		name:        "abi",
		description: "print the ABI of a module",
		run:         runABI,
	},
	{
		name:        "encode",
		description: "encode a call of an entry function",
		run:         runEncode,
	},
}

// usageError is returned when the command line is invalid
type usageError struct {
	message string
}

func (e usageError) Error() string {
	return e.message
}

func newUsageError(format string, args ...any) usageError {
	return usageError{
		message: fmt.Sprintf(format, args...),
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: movecall <command> [flags] [arguments]")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "commands:")
	for _, command := range commands {
		_, _ = fmt.Fprintf(w, "  %-8s %s\n", command.name, command.description)
	}
}

// newFlagSet returns the flag set of a subcommand.
// The -no-color flag is shared by all subcommands.
func newFlagSet(env *environment, name string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(env.stderr)
	flags.BoolFunc("no-color", "disable colored output", func(string) error {
		env.colors = false
		return nil
	})
	return flags
}

func parseFlags(flags *flag.FlagSet, args []string) error {
	err := flags.Parse(args)
	if err != nil {
		if goErrors.Is(err, flag.ErrHelp) {
			return err
		}
		return newUsageError("%s", err)
	}
	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	env := &environment{
		ctx:    ctx,
		stdout: stdout,
		stderr: stderr,
		colors: isTerminal(stdout),
	}

	name := args[0]

	for _, command := range commands {
		if command.name != name {
			continue
		}

		err := command.run(env, args[1:])
		switch {
		case err == nil:
			return 0

		case goErrors.Is(err, flag.ErrHelp):
			return 0

		case goErrors.As(err, &usageError{}):
			printError(stderr, err, env.colors)
			return 2

		default:
			printError(stderr, err, env.colors)
			return 1
		}
	}

	printError(stderr, newUsageError("unknown command %q", name), env.colors)
	printUsage(stderr)
	return 2
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd())
}

// stringsFlag is a flag which may be repeated
type stringsFlag []string

var _ flag.Value = &stringsFlag{}

func (f *stringsFlag) String() string {
	return strings.Join(*f, " ")
}

func (f *stringsFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
