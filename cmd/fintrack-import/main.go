// Command fintrack-import parses a CSV ledger file and prints what would be
// imported, one JSON report per run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"fintrack/internal/account"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type report struct {
	services.ImportResult
	Balance      float64         `json:"balance"`
	Transactions []core.FullView `json:"transactions,omitempty"`
}

func main() {
	verbose := flag.Bool("v", false, "include the imported transactions in the report")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-v] <file.csv | ->\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Defaults()
	cfg.LogLevel = "warn"
	logger := cli.SetupLogger(&cfg, log.ComponentImport)

	if err := run(flag.Arg(0), *verbose, os.Stdin, os.Stdout); err != nil {
		logger.Error("Import failed", log.FieldError, err)
		os.Exit(1)
	}
}

func run(path string, verbose bool, stdin io.Reader, out io.Writer) error {
	var in io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	acct := account.New()
	svc := services.NewTransactionService(acct, nil, nil)
	rep := report{ImportResult: svc.ImportCSV(context.Background(), string(raw)), Balance: svc.Balance()}
	if verbose {
		for _, t := range svc.ListTransactions(core.Filter{}) {
			rep.Transactions = append(rep.Transactions, t.FullView())
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
