package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/milk9111/dronecore/config"
	"github.com/milk9111/dronecore/logging"
	"github.com/milk9111/dronecore/statelog"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: dronelog [-config dir] show|clear|path\n")
	flag.PrintDefaults()
}

func main() {
	configDir := flag.String("config", ".", "directory containing dronesim.yaml")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sink := statelog.NewFileSink(cfg.Log.Dir, cfg.Log.File, statelog.WithFileLogger(log))

	switch cmd := flag.Arg(0); cmd {
	case "path":
		fmt.Println(sink.Path())
	case "show":
		if !sink.Exists() {
			fmt.Println("No log file found.")
			return
		}
		lines, err := sink.Contents()
		if err != nil {
			log.Fatal().Err(err).Str("path", sink.Path()).Msg("read state log")
		}
		for _, line := range lines {
			fmt.Println(line)
		}
	case "clear":
		if err := sink.Clear(); err != nil {
			log.Fatal().Err(err).Str("path", sink.Path()).Msg("clear state log")
		}
		log.Info().Str("path", sink.Path()).Msg("state log cleared")
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
}
