package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/tomvasile/ledgerscan/internal/analysis"
	"github.com/tomvasile/ledgerscan/internal/extract"
	"github.com/tomvasile/ledgerscan/internal/render"
)

func main() {
	fs := ff.NewFlagSet("ledgerscan-batch")
	var (
		inputDir      = fs.StringLong("input", ".", "Directory to scan for PDF documents")
		outputDir     = fs.StringLong("output", "", "Directory for JSON results (defaults to input directory)")
		workers       = fs.IntLong("workers", 4, "Number of concurrent extraction workers")
		docType       = fs.StringLong("type", "", "Document type hint: 'bank_statement', 'rideshare' or empty")
		cacheSize     = fs.IntLong("cache-size", 100, "Maximum analysis cache entries")
		cacheMemoryMB = fs.IntLong("cache-memory-mb", 0, "Heap-pressure ceiling for the analysis cache in MB (0 disables)")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("LEDGERSCAN"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *outputDir == "" {
		*outputDir = *inputDir
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		slog.Error("Failed to create output directory", "path", *outputDir, "error", err)
		os.Exit(1)
	}

	hint := extract.DocTypeGeneral
	switch strings.ToLower(*docType) {
	case "bank_statement":
		hint = extract.DocTypeBankStatement
	case "rideshare":
		hint = extract.DocTypeRideshare
	}

	files, err := findPDFs(*inputDir)
	if err != nil {
		slog.Error("Failed to scan input directory", "path", *inputDir, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		slog.Info("No PDF documents found", "path", *inputDir)
		return
	}

	cache := analysis.NewCache(*cacheSize, uint64(*cacheMemoryMB)<<20)
	pipeline := extract.NewPipeline(&render.PDFOpener{}, cache)

	pool, err := ants.NewPool(*workers)
	if err != nil {
		slog.Error("Failed to create worker pool", "error", err)
		os.Exit(1)
	}
	defer pool.Release()

	slog.Info("Starting batch extraction", "documents", len(files), "workers", *workers)

	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	ctx := context.Background()

	for _, path := range files {
		path := path
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := processFile(ctx, pipeline, path, *outputDir, hint); err != nil {
				failed.Add(1)
				slog.Error("Extraction failed", "file", path, "error", err)
			}
		})
		if err != nil {
			wg.Done()
			failed.Add(1)
			slog.Error("Failed to submit job", "file", path, "error", err)
		}
	}
	wg.Wait()

	slog.Info("Batch extraction complete",
		"documents", len(files),
		"failed", failed.Load(),
	)
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

// findPDFs returns all PDF files under root, sorted by WalkDir order
func findPDFs(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// processFile extracts one document and writes the result JSON next to
// its basename in the output directory
func processFile(ctx context.Context, pipeline *extract.Pipeline, path, outputDir string, hint extract.DocumentType) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	result, err := pipeline.Extract(ctx, data, hint)
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outputDir, base+".json")

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}

	slog.Info("Extracted document",
		"file", path,
		"type", result.DocumentType,
		"transactions", result.TransactionCount,
		"confidence", result.ExtractionConfidence,
	)
	return nil
}
