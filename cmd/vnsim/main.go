// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/vnsim/emulator"
	"github.com/ezrec/vnsim/machine"
)

func main() {
	var compile string
	var input string
	var output string
	var tapeFile string
	var numeric bool
	var budget int
	var dump bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".vn assembly file to compile and run")
	flag.StringVar(&input, "i", "-", "INPUT port stream")
	flag.StringVar(&output, "o", "-", "OUTPUT port stream")
	flag.StringVar(&tapeFile, "t", "", "Record/replay tape file (overrides -i/-o)")
	flag.BoolVar(&numeric, "n", false, "Numeric console I/O instead of raw bytes")
	flag.IntVar(&budget, "b", 0, "Cycle budget (0 = default)")
	flag.BoolVar(&dump, "d", false, "Dump registers and memory after the run")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) == 0 {
		log.Fatalf("%v: No program given (-c)", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if len(tapeFile) != 0 {
		emu.UseTape()

		tf, err := os.Open(tapeFile)
		if err == nil {
			err = emu.Tape.Unmarshal(tf)
			tf.Close()
		}
		if err != nil && !os.IsNotExist(err) {
			log.Fatalf("%v: %v", tapeFile, err)
		}
	} else {
		emu.UseConsole()
		emu.Console.Numeric = numeric

		if input == "-" {
			emu.Console.Input = os.Stdin
		} else {
			inf, err := os.Open(input)
			if err != nil {
				log.Fatalf("%v: %v", input, err)
			}
			defer inf.Close()
			emu.Console.Input = inf
		}

		if output == "-" {
			emu.Console.Output = os.Stdout
		} else {
			ouf, err := os.Create(output)
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
			defer ouf.Close()
			emu.Console.Output = ouf
		}
	}

	inf, err := os.Open(compile)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}
	defer inf.Close()

	asm := &machine.Assembler{Verbose: verbose}
	for attr, val := range emu.Defines() {
		asm.Predefine(attr, val)
	}

	prog, err := asm.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	_, err = emu.Load(prog)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	outcome, err := emu.Run(budget)
	if err != nil {
		log.Printf("%v: %v", compile, err)
	}

	if len(tapeFile) != 0 {
		tf, err := os.Create(tapeFile)
		if err != nil {
			log.Fatalf("%v: %v", tapeFile, err)
		}
		err = emu.Tape.Marshal(tf)
		tf.Close()
		if err != nil {
			log.Fatalf("%v: %v", tapeFile, err)
		}
	}

	if dump {
		fmt.Fprintf(os.Stderr, "outcome: %v after %v cycles\n", outcome, emu.CycleCount())
		fmt.Fprint(os.Stderr, emu.Machine.String())

		cells, err := emu.DumpMemory(0, emulator.MEMORY_SIZE)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		for row := 0; row < len(cells); row += 16 {
			fmt.Fprintf(os.Stderr, "%04x:", row)
			for col := range 16 {
				fmt.Fprintf(os.Stderr, " %02x", cells[row+col])
			}
			fmt.Fprintln(os.Stderr)
		}
	}

	if outcome != emulator.OUTCOME_HALTED {
		os.Exit(1)
	}
}
