package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/doorway/pkg/config"
	"github.com/tzrikka/doorway/pkg/etcd"
	"github.com/tzrikka/doorway/pkg/http"
	"github.com/tzrikka/doorway/pkg/queue"
	"github.com/tzrikka/doorway/pkg/thrippy"
	"github.com/tzrikka/xdg"
)

const (
	ConfigDirName  = "doorway"
	ConfigFileName = "config.toml"
)

func main() {
	buildInfo, _ := debug.ReadBuildInfo()
	configFilePath := configFile()

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "dev",
			Usage: "simple setup, but unsafe for production",
		},
	}
	flags = append(flags, http.Flags(configFilePath)...)
	flags = append(flags, config.Flags(configFilePath)...)
	flags = append(flags, etcd.Flags(configFilePath)...)
	flags = append(flags, thrippy.Flags(configFilePath)...)
	flags = append(flags, queue.Flags(configFilePath)...)

	cmd := &cli.Command{
		Name:    "doorway",
		Usage:   "Answer Discord interactions over HTTP, and queue them for asynchronous handling",
		Version: buildInfo.Main.Version,
		Flags:   flags,
		Action:  http.Start,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// configFile returns the path to the app's configuration file.
// It also creates an empty file if it doesn't already exist.
func configFile() altsrc.StringSourcer {
	path, err := xdg.CreateFile(xdg.ConfigHome, ConfigDirName, ConfigFileName)
	if err != nil {
		log.Fatal().Err(err).Caller().Send()
	}
	return altsrc.StringSourcer(path)
}
