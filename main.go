package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/night-audit-converter/internal/api"
	"github.com/insightdelivered/night-audit-converter/internal/extractor"
	"github.com/insightdelivered/night-audit-converter/internal/mapping"
	"github.com/insightdelivered/night-audit-converter/internal/parser"
	"github.com/insightdelivered/night-audit-converter/internal/writer"
)

const version = "1.0.0"

func main() {
	// CLI flags
	mappingFlag := flag.String("mapping", "", "Source-code mapping workbook (.xlsx); enables posting-code validation and ledger account resolution")
	outputFlag := flag.String("output", "", "Output CSV file path (defaults to input filename with .csv extension)")
	combineFlag := flag.Bool("combine", false, "Consolidate credit-card payment lines into a single CC line")
	minAmountFlag := flag.String("min-amount", "0.01", "Minimum absolute amount; smaller lines are dropped (statistical lines are exempt)")
	includeZeroFlag := flag.Bool("include-zero", false, "Keep zero and below-minimum amounts")
	serveFlag := flag.String("serve", "", "Run the HTTP API on this address (e.g. :8080) instead of converting files")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Night Audit Report to CSV Converter
by Insight Delivered (QEA AutoLens)

Converts hotel PMS night-audit report PDFs into structured CSV files
of typed account lines for accounting review and journal import.

Usage:
  night-audit-converter [flags] <input.pdf|input.txt> [input2.pdf ...]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Convert a report
  night-audit-converter audit.pdf

  # Validate posting codes against the accounting mapping workbook
  night-audit-converter --mapping=chart.xlsx audit.pdf

  # Consolidate card payments and keep zero amounts
  night-audit-converter --combine --include-zero audit.pdf

  # Run the HTTP API
  night-audit-converter --serve=:8080
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("night-audit-converter v%s\n", version)
		os.Exit(0)
	}

	if *serveFlag != "" {
		app := api.NewApp()
		fmt.Printf("night-audit-converter v%s listening on %s\n", version, *serveFlag)
		if err := app.Listen(*serveFlag); err != nil {
			fatalf("Server failed: %v\n", err)
		}
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	minAmount, err := decimal.NewFromString(*minAmountFlag)
	if err != nil {
		fatalf("Invalid --min-amount %q: %v\n", *minAmountFlag, err)
	}

	opts := parser.DefaultOptions()
	opts.MinimumAmount = minAmount
	opts.IncludeZeroAmounts = *includeZeroFlag
	if *combineFlag {
		opts.CombinePaymentMethods = true
		opts.PaymentMethodGroups = map[string][]string{
			"Credit Cards": {"VISA", "MASTER", "DISCOVER", "AMEX"},
		}
	}

	var resolver writer.AccountResolver
	if *mappingFlag != "" {
		m, err := mapping.Load(*mappingFlag)
		if err != nil {
			fatalf("Failed to load mapping workbook: %v\n", err)
		}
		fmt.Printf("Loaded %d source code(s) from %s\n", m.Len(), *mappingFlag)
		opts.ValidSourceCodes = m.SourceCodes()
		resolver = m
	}

	p := parser.New(opts)

	// Process each input file
	for _, inputPath := range flag.Args() {
		if err := processFile(p, resolver, inputPath, *outputFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

func processFile(p *parser.Parser, resolver writer.AccountResolver, inputPath, outputPath string) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	// Resolve the report text
	var text string
	switch ext := strings.ToLower(filepath.Ext(inputPath)); ext {
	case ".pdf":
		pages, err := extractor.ExtractText(inputPath)
		if err != nil {
			return fmt.Errorf("PDF extraction failed: %w", err)
		}
		fmt.Printf("  Extracted text from %d page(s)\n", len(pages))
		text = strings.Join(pages, "\n")
	case ".txt":
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(data)
	default:
		return fmt.Errorf("expected .pdf or .txt file, got %q", ext)
	}

	lines := p.ConsolidatedAccountLines(text)
	stats := p.Stats(text)

	fmt.Printf("  Found %d account line(s)\n", len(lines))

	if len(lines) == 0 {
		fmt.Println("  Warning: No account lines found. The report layout may not match expected patterns.")
	}

	// Determine output path
	outPath := outputPath
	if outPath == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outPath = base + ".csv"
	}

	w := &writer.CSVWriter{Accounts: resolver}
	if err := w.WriteToFile(outPath, lines); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}

	fmt.Printf("  Output: %s\n", outPath)

	// Print summary
	fmt.Printf("  Parsed %d of %d line(s), skipped %d\n", stats.ParsedLines, stats.TotalLines, stats.SkippedLines)
	fmt.Printf("  Debits: %s  Credits: %s  Net: %s\n",
		stats.TotalDebits.StringFixed(2), stats.TotalCredits.StringFixed(2), stats.TotalAmount.StringFixed(2))

	fmt.Println("  Done.")
	return nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
