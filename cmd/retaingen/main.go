package main

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/seitarof/retaingen/internal/cli"
	"github.com/seitarof/retaingen/internal/generator"
	"github.com/seitarof/retaingen/internal/parser"
)

var version = "dev"

func main() {
	cfg, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg.ShowVersion {
		fmt.Println(version)
		return
	}

	logger, err := cli.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	src := parser.New(logger.Named("parser"))
	g := generator.New(generator.NewGoimportsFormatter(), generator.NewFileWriter())

	runner := cli.NewRunner(src, g, logger, os.Stderr)
	if err := runner.Run(cfg); err != nil {
		logger.Error("retaingen failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
