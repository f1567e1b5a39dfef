package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fabula/internal/batch"
	"fabula/internal/blend"
	"fabula/internal/logging"
)

var (
	flagBatchInput   string
	flagBatchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Blend many selections from a JSONL file, one result per line",
	Long: `Reads one active selection per line (JSON) and blends them all against the
same rulebook. Results print in input order, one JSON object per line. The
engine is pure, so workers only bound CPU use — output is identical at any
worker count.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&flagBatchInput, "input", "i", "", "path to selections file (JSONL)")
	batchCmd.Flags().IntVarP(&flagBatchWorkers, "workers", "w", 4, "number of parallel workers")
	batchCmd.Flags().StringVarP(&flagRulesPath, "rules", "r", "", "path to a rulebook file (default: embedded curated rules)")
	_ = batchCmd.MarkFlagRequired("input")
}

func readSelections(path string) ([]blend.Selection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open selections: %w", err)
	}
	defer f.Close()

	var selections []blend.Selection
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var sel blend.Selection
		if err := json.Unmarshal(text, &sel); err != nil {
			return nil, fmt.Errorf("parse selection on line %d: %w", line, err)
		}
		selections = append(selections, sel)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read selections: %w", err)
	}
	return selections, nil
}

func runBatch(cmd *cobra.Command, _ []string) error {
	rules, err := loadRules(flagRulesPath)
	if err != nil {
		return err
	}
	selections, err := readSelections(flagBatchInput)
	if err != nil {
		return err
	}

	logger := logging.New("batch")
	logger.Info("blending batch", "selections", len(selections), "workers", flagBatchWorkers)

	results, err := batch.Run(cmd.Context(), rules, selections, flagBatchWorkers)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()
	enc := json.NewEncoder(out)
	accepted := 0
	for _, result := range results {
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		if result.Accepted {
			accepted++
		}
	}
	logger.Info("batch done", "accepted", accepted, "rejected", len(results)-accepted)
	return nil
}
