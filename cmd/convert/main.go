// Command convert converts an amount between currencies and prints the result
// as JSON.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"currencyconverter/internal/converter"
	"currencyconverter/internal/provider"
	"currencyconverter/internal/rates"
	"currencyconverter/internal/symbols"
)

type options struct {
	amount         string
	inputCurrency  string
	outputCurrency string
	mode           string
	cachePath      string
	symbolsPath    string
	appID          string
	oxrURL         string
	frankfurterURL string
	staleAfter     time.Duration
	timeoutSec     int
	verbose        bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	var opts options
	fs := pflag.NewFlagSet("convert", pflag.ContinueOnError)
	fs.StringVar(&opts.amount, "amount", "", "amount to convert")
	fs.StringVar(&opts.inputCurrency, "input_currency", "", "input currency code or symbol")
	fs.StringVar(&opts.outputCurrency, "output_currency", "", "output currency code or symbol; all currencies when omitted")
	fs.StringVar(&opts.mode, "mode", string(rates.ModeCachedRefresh), "rates mode: remote, cached-refresh or cached-only")
	fs.StringVar(&opts.cachePath, "cache", "data/rates.json", "rates cache file")
	fs.StringVar(&opts.symbolsPath, "symbols", "testdata/currency_symbols.txt", "currency symbol table")
	fs.StringVar(&opts.appID, "app-id", os.Getenv("CONVERTER_OPENEXCHANGERATES_APP_ID"), "openexchangerates app id; frankfurter is used when empty")
	fs.StringVar(&opts.oxrURL, "oxr-url", "https://openexchangerates.org/api/latest.json", "openexchangerates endpoint")
	fs.StringVar(&opts.frankfurterURL, "frankfurter-url", "https://api.frankfurter.dev/v1", "frankfurter endpoint")
	fs.DurationVar(&opts.staleAfter, "stale-after", rates.DefaultStaleAfter, "age at which the cache is refreshed")
	fs.IntVar(&opts.timeoutSec, "timeout", 10, "remote request timeout in seconds")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.amount == "" || opts.inputCurrency == "" {
		return errors.New("--amount and --input_currency are required")
	}
	amount, err := converter.ParseAmount(opts.amount)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv, err := newConverter(ctx, opts, sugar)
	if err != nil {
		return err
	}

	req := converter.Request{Amount: amount, Input: opts.inputCurrency}
	if fs.Changed("output_currency") {
		req.Output = &opts.outputCurrency
	}
	res, err := conv.Convert(ctx, req)
	if err != nil {
		return err
	}

	data, err := res.JSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}

func newConverter(ctx context.Context, opts options, logger *zap.SugaredLogger) (*converter.Converter, error) {
	mode, err := rates.ParseMode(opts.mode)
	if err != nil {
		return nil, err
	}

	var fetcher rates.Fetcher
	if mode != rates.ModeCachedOnly {
		if opts.appID != "" {
			fetcher = provider.NewOpenExchangeRatesProvider(opts.oxrURL, opts.appID, opts.timeoutSec)
		} else {
			fetcher = provider.NewFrankfurterProvider(opts.frankfurterURL, "USD", opts.timeoutSec)
		}
	}

	var storage rates.Storage
	if opts.cachePath != "" {
		storage = rates.NewFileStorage(opts.cachePath)
	}

	store, err := rates.NewStore(ctx, mode, fetcher, storage,
		rates.WithStaleAfter(opts.staleAfter),
		rates.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	table, err := symbols.Load(opts.symbolsPath)
	if err != nil {
		return nil, err
	}

	return converter.New(store, table, converter.WithLogger(logger)), nil
}
