package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"tutornotes/internal/cli"
	"tutornotes/internal/core"
	"tutornotes/internal/ledger"
	applog "tutornotes/internal/log"
	"tutornotes/internal/services"
)

func main() {
	var (
		notes        string
		year         int
		openFolder   bool
		exportLedger string
	)
	flag.StringVar(&notes, "notes", "", "Notes per page, separated by | (first page first)")
	flag.IntVar(&year, "year", 0, "Year printed on the note (default: current year)")
	flag.BoolVar(&openFolder, "open", false, "Open the output folder when done")
	flag.StringVar(&exportLedger, "export-ledger", "", "Write every issued note to this .xlsx file and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] CODE-Student-Month.csv...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if exportLedger == "" && flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	table := cli.LoadCodes(logger, cfg.CodesFile)

	ctx := context.Background()
	pipeline, err := cli.NewPipeline(ctx, cfg, table, logger)
	if err != nil {
		logger.Error("Failed to initialize debit note pipeline", applog.FieldError, err)
		os.Exit(1)
	}
	defer pipeline.Close()

	if exportLedger != "" {
		if err := export(ctx, pipeline, exportLedger); err != nil {
			logger.Error("Ledger export failed", applog.FieldOperation, applog.OpExport, applog.FieldError, err)
			os.Exit(1)
		}
		fmt.Println("Ledger written to", exportLedger)
		return
	}

	res, err := pipeline.Notes.Generate(ctx, services.NoteRequest{
		Files: flag.Args(),
		Notes: services.ParseNotes(notes),
		Year:  year,
	})
	if err != nil {
		var fe *core.FileError
		if errors.As(err, &fe) {
			fmt.Fprintf(os.Stderr, "%s: %s: %v\n", fe.File, fe.Stage, fe.Err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	fmt.Printf("%s: %d page(s), %s\n", res.Path, len(res.Pages), core.FormatTotal(res.Note.Total))
	if openFolder {
		if err := cli.OpenFolder(filepath.Dir(res.Path)); err != nil {
			logger.Warn("Could not open output folder", applog.FieldError, err)
		}
	}
}

func export(ctx context.Context, pipeline *cli.Pipeline, path string) error {
	notes, err := pipeline.IssuedNotes(ctx)
	if err != nil {
		return fmt.Errorf("list issued notes: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ledger.ExportXLSX(f, notes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
