// Command frostrun dispatches one exported symbol of the embedded
// contract against an invocation context described in a TOML file, then
// prints the call outcome, guest logs, and resulting storage.
//
// Each run is one invocation: a fresh interpreter is booted, the export
// is attempted exactly once, and a failure exits non-zero, mirroring the
// host's abort contract.
//
// Usage:
//
//	frostrun -export init -config examples/init.toml
//	frostrun -list
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	bridge "github.com/frostvm/bridge"
	"github.com/frostvm/bridge/contract"
	"github.com/frostvm/bridge/dispatch"
	"github.com/frostvm/bridge/host"
	"github.com/frostvm/bridge/image"
)

type invocationConfig struct {
	Predecessor    string            `toml:"predecessor"`
	CurrentAccount string            `toml:"current_account"`
	Deposit        uint64            `toml:"deposit"`
	BlockTimestamp uint64            `toml:"block_timestamp"`
	Input          string            `toml:"input"`
	Storage        map[string]string `toml:"storage"`
}

var (
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	styleFail   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

func main() {
	// Exit through a return value so deferred cleanup (logger sync) runs.
	os.Exit(realMain())
}

func realMain() int {
	var (
		exportName = flag.String("export", "", "Exported symbol to dispatch")
		configPath = flag.String("config", "", "Invocation context TOML (optional)")
		list       = flag.Bool("list", false, "List dispatchable exports and exit")
		verbose    = flag.Bool("v", false, "Verbose bridge logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "frostrun: %v\n", err)
			return 1
		}
		defer logger.Sync()
		bridge.SetLogger(logger)
	}

	if !*list && *exportName == "" {
		fmt.Fprintln(os.Stderr, "Usage: frostrun -export <symbol> [-config file.toml] [-v]")
		fmt.Fprintln(os.Stderr, "       frostrun -list")
		return 1
	}

	failed, err := run(*exportName, *configPath, *list)
	if err != nil {
		fmt.Fprintf(os.Stderr, "frostrun: %v\n", err)
		return 1
	}
	if failed {
		return 1
	}
	return 0
}

// run performs the invocation and reports whether the dispatched call
// failed, leaving the exit decision to the caller.
func run(exportName, configPath string, list bool) (failed bool, err error) {
	table := dispatch.NewTable()
	if err := contract.Bind(table); err != nil {
		return false, err
	}

	d, err := dispatch.New(table, image.Default())
	if err != nil {
		return false, err
	}

	if list {
		fmt.Println(styleHeader.Render("Exports of " + contract.ImageName))
		for _, symbol := range d.Symbols() {
			fmt.Println("  " + symbol)
		}
		return false, nil
	}

	var cfg invocationConfig
	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
			return false, fmt.Errorf("decode config: %w", err)
		}
	}

	store := host.NewMemStore()
	for k, v := range cfg.Storage {
		store.Set([]byte(k), []byte(v))
	}

	hc := host.NewContext(store)
	hc.Predecessor = cfg.Predecessor
	hc.CurrentAccount = cfg.CurrentAccount
	hc.Deposit = cfg.Deposit
	hc.BlockTimestamp = cfg.BlockTimestamp
	hc.Input = []byte(cfg.Input)

	res := d.Dispatch(context.Background(), exportName, hc)
	render(exportName, hc, store, res)
	return res.Failed(), nil
}

func render(exportName string, hc *host.Context, store *host.MemStore, res bridge.CallResult) {
	if res.Failed() {
		fmt.Println(styleFail.Render("✗ " + exportName))
		fmt.Println("  " + res.Message)
	} else {
		fmt.Println(styleOK.Render("✓ " + exportName))
		if len(res.Value) > 0 {
			fmt.Println("  return: " + string(res.Value))
		}
	}

	if logs := hc.Logs(); len(logs) > 0 {
		fmt.Println(styleHeader.Render("Logs"))
		for _, line := range logs {
			fmt.Println(styleDim.Render("  " + line))
		}
	}

	if keys := store.Keys(); len(keys) > 0 {
		fmt.Println(styleHeader.Render("Storage"))
		for _, k := range keys {
			v, _ := store.Get([]byte(k))
			fmt.Printf("  %s = %s\n", k, v)
		}
	}
}
