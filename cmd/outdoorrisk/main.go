package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/outdoorrisk/internal/app"
	"github.com/chrissnell/outdoorrisk/internal/constants"
	"github.com/chrissnell/outdoorrisk/internal/log"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "", "Path to YAML configuration file (omit to configure from environment)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("outdoorrisk %s\n", constants.Version)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var provider config.Provider
	if *cfgFile != "" {
		filename, _ := filepath.Abs(*cfgFile)
		provider = config.NewYAMLProvider(filename)
	} else {
		provider = config.NewEnvProvider()
	}

	application := app.New(provider, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}
