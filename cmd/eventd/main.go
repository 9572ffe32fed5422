package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/eventd/internal/config"
	"github.com/matheus3301/eventd/internal/daemon"
	"go.uber.org/fx"
)

func main() {
	configFlag := flag.String("config", "", "path to eventd.toml (defaults apply when omitted)")
	listenFlag := flag.String("listen", "", "listen address (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	app := fx.New(
		daemon.Module(daemon.Params{Config: cfg, ListenAddr: *listenFlag}),
	)

	app.Run()
}
