// cmd/sudice/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"

	"sudice/internal/checker"
	"sudice/internal/config"
	"sudice/internal/estimator"
	"sudice/internal/histogram"
	"sudice/internal/ir"
	"sudice/internal/parser"
)

const version = "0.1.0"

var commandAliases = map[string]string{
	"r": "run",
	"c": "check",
	"p": "parse",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Printf("sudice %s\n", version)
	case "run":
		if len(args) < 2 {
			log.Fatal("run requires a dice expression, e.g. sudice run \"3d6 + 2\"")
		}
		runCommand(args[1])
	case "check":
		if len(args) < 2 {
			log.Fatal("check requires a dice expression")
		}
		checkCommand(args[1])
	case "parse":
		if len(args) < 2 {
			log.Fatal("parse requires a dice expression")
		}
		parseCommand(args[1])
	default:
		color.Red("Error: unknown command %q", cmd)
		showUsage()
		os.Exit(1)
	}
}

func runCommand(expr string) {
	prog, err := parser.Parse(expr)
	if err != nil {
		log.Fatalf("parse error: %v", err)
	}
	cfg := config.FromEnv(config.Default())
	results, err := estimator.Estimate(context.Background(), prog, cfg)
	if err != nil {
		log.Fatalf("estimation error: %v", err)
	}
	if err := histogram.Render(os.Stdout, results); err != nil {
		log.Fatalf("render error: %v", err)
	}
}

func checkCommand(expr string) {
	prog, err := parser.Parse(expr)
	if err != nil {
		log.Fatalf("parse error: %v", err)
	}
	min, max, err := checker.Check(prog)
	if err != nil {
		color.Red("check failed: %v", err)
		os.Exit(1)
	}
	fmt.Printf("range [%d, %d], size %d\n", min, max, max-min+1)
}

func parseCommand(expr string) {
	prog, err := parser.Parse(expr)
	if err != nil {
		log.Fatalf("parse error: %v", err)
	}
	printProgram(prog)
}

func printProgram(prog *ir.Program) {
	for i, inst := range prog.Code {
		switch {
		case len(inst.Offsets) > 0:
			fmt.Printf("%4d  %-14s %v\n", i, inst.Op, inst.Offsets)
		case inst.Op == ir.Num || inst.Op == ir.BestOf || inst.Op == ir.WorstOf || inst.Op == ir.Jump:
			fmt.Printf("%4d  %-14s %d\n", i, inst.Op, inst.Arg)
		default:
			fmt.Printf("%4d  %s\n", i, inst.Op)
		}
	}
}

func showUsage() {
	fmt.Println("sudice - dice-expression language toolchain")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sudice run <expr>      Parse, check, and Monte-Carlo sample an expression   (alias: r)")
	fmt.Println("  sudice check <expr>    Parse and statically range-check an expression        (alias: c)")
	fmt.Println("  sudice parse <expr>    Parse an expression and print its compiled IR          (alias: p)")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  SUDICE_OBS_FACTOR      Samples per unit of range size (default 2000)")
	fmt.Println("  SUDICE_WORKERS         Parallel sampling workers (default 1)")
	fmt.Println("  SUDICE_SEED            RNG seed (default 1)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  sudice run \"3d6 + 2\"")
	fmt.Println("  sudice check \"1d20 b 2\"")
	fmt.Println("  sudice r \"3d6 \\\\h 1\"")
}
