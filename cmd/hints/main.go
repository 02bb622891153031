package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sales-advisor/engine/internal/catalog"
	"sales-advisor/engine/internal/keywords"
	"sales-advisor/engine/internal/store"
)

func main() {
	var (
		catalogPath = flag.String("catalog", "", "Path to a catalog JSON file (array of products)")
		catalogURL  = flag.String("catalog-url", "", "HTTP(S) endpoint returning the catalog JSON")
		knownPath   = flag.String("known", "", "Optional path to a JSON array of already-known terms")
		dbPath      = flag.String("db", filepath.FromSlash("data/sales-advisor.db"), "Path to SQLite database for hint-run bookkeeping")
		outputPath  = flag.String("output", "", "Optional path to write the ranked hints as JSON")
		topN        = flag.Int("top", 20, "Number of leading hint words persisted with the run")
		skipDB      = flag.Bool("no-db", false, "Skip hint-run persistence")
	)
	flag.Parse()

	if strings.TrimSpace(*catalogPath) == "" && strings.TrimSpace(*catalogURL) == "" {
		logrus.Fatal("either -catalog or -catalog-url is required")
	}

	rows, source, err := loadCatalog(*catalogPath, *catalogURL)
	if err != nil {
		logrus.Fatalf("load catalog: %v", err)
	}
	products := catalog.FromRawList(rows)
	logrus.WithFields(logrus.Fields{
		"source":   source,
		"products": len(products),
	}).Info("catalog loaded")

	knownTerms, err := loadKnownTerms(*knownPath)
	if err != nil {
		logrus.Fatalf("load known terms: %v", err)
	}

	start := time.Now()
	hints := keywords.Build(products, knownTerms)
	logrus.WithFields(logrus.Fields{
		"hints":    len(hints),
		"known":    len(knownTerms),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("hint generation complete")

	if !*skipDB {
		db, err := store.Open(*dbPath, true)
		if err != nil {
			logrus.Fatalf("open database: %v", err)
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logrus.WithError(cerr).Warn("close database")
			}
		}()

		run := store.HintRun{
			Source:       source,
			ProductCount: len(products),
			HintCount:    len(hints),
		}
		run.SetTopHints(leadingWords(hints, *topN))
		if err := db.SaveHintRun(&run); err != nil {
			logrus.Fatalf("persist hint run: %v", err)
		}
		logrus.WithField("run_id", run.ID).Info("hint run persisted")
	}

	if *outputPath != "" {
		if err := writeHints(*outputPath, hints); err != nil {
			logrus.Fatalf("write hints: %v", err)
		}
		logrus.WithField("path", *outputPath).Info("hints written to file")
	}
}

func loadCatalog(path, url string) ([]any, string, error) {
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, "", err
		}
		rows, err := decodeCatalog(data)
		return rows, filepath.Clean(path), err
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", fmt.Errorf("catalog request failed: %s", strings.TrimSpace(string(body)))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	rows, err := decodeCatalog(data)
	return rows, url, err
}

func decodeCatalog(data []byte) ([]any, error) {
	var rows []any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return rows, nil
}

func loadKnownTerms(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, fmt.Errorf("unmarshal known terms: %w", err)
	}
	return terms, nil
}

func writeHints(path string, hints []keywords.Hint) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(hints)
}

func leadingWords(hints []keywords.Hint, limit int) []string {
	if limit <= 0 || limit > len(hints) {
		limit = len(hints)
	}
	words := make([]string, 0, limit)
	for _, hint := range hints[:limit] {
		words = append(words, hint.Word)
	}
	return words
}
