// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/awl/cpu"
	"github.com/ezrec/awl/emulator"
	"github.com/ezrec/awl/internal"
	"github.com/ezrec/awl/io"
	"github.com/ezrec/awl/script"
)

func main() {
	var compile string
	var cycles int
	var lang string
	var input string
	var output string
	var loopback bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".star program to load")
	flag.IntVar(&cycles, "n", 0, "Number of cycles to run, 0 to run until shutdown")
	flag.StringVar(&lang, "lang", "de", "Mnemonic language of the program (de, en)")
	flag.StringVar(&input, "i", "", "Input image tape, - for stdin")
	flag.StringVar(&output, "o", "", "Output image tape, - for stdout")
	flag.BoolVar(&loopback, "loopback", false, "Loop outputs back to inputs")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		logrus.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}
	if len(compile) == 0 {
		logrus.Fatalf("%v: -c is required", os.Args[0])
	}
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	mnemonics, err := cpu.ParseMnemonics(lang)
	if err != nil {
		logrus.Fatal(err)
	}

	inf, err := os.Open(compile)
	if err != nil {
		logrus.Fatalf("%v: %v", compile, err)
	}
	defer inf.Close()

	ld := script.NewLoader()
	ld.Verbose = verbose
	ld.Mnemonics = mnemonics
	prog, specs, err := ld.Load(compile, inf)
	if err != nil {
		logrus.Fatal(err)
	}

	var hw io.Hardware = &io.Dummy{}
	switch {
	case loopback:
		hw = io.NewLoopback(specs.NrPeripheral)
	case len(input) != 0 || len(output) != 0:
		tape := &io.Tape{Verbose: verbose}
		switch input {
		case "":
		case "-":
			tape.Input = os.Stdin
		default:
			tin, err := os.Open(input)
			if err != nil {
				logrus.Fatalf("%v: %v", input, err)
			}
			defer tin.Close()
			tape.Input = tin
		}
		switch output {
		case "":
		case "-":
			tape.Output = os.Stdout
		default:
			tout, err := os.Create(output)
			if err != nil {
				logrus.Fatalf("%v: %v", output, err)
			}
			defer tout.Close()
			tape.Output = tout
		}
		hw = tape
	}

	emu, err := emulator.NewEmulator(specs, hw)
	if err != nil {
		logrus.Fatal(err)
	}
	emu.Verbose = verbose
	if verbose {
		for name, value := range internal.Sorted(emu.Defines()) {
			logrus.Debugf("awlcpu: %v = %v", name, value)
		}
	}

	err = emu.Load(prog)
	if err != nil {
		logrus.Fatal(err)
	}
	err = emu.Start()
	if err != nil {
		logrus.Fatal(err)
	}
	defer emu.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx, cycles)
	if err != nil && ctx.Err() == nil {
		logrus.WithField("cpu", emu.Cpu.String()).Error("awlcpu: stopped")
		logrus.Fatal(err)
	}

	stats := emu.Stats
	logrus.WithFields(logrus.Fields{
		"cycles":  stats.Count,
		"insns":   stats.Insns,
		"min":     stats.Min,
		"max":     stats.Max,
		"reboots": emu.Reboots,
	}).Info("awlcpu: done")
}
