package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	svc "Zelvix/pkg/services"
	"Zelvix/pkg/widget"
)

type ProbeResult struct {
	Query      string `json:"query"`
	Response   string `json:"response"`
	Fallback   bool   `json:"fallback"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Timestamp  string `json:"timestamp"`
}

type ProbeSummary struct {
	RunID        string        `json:"run_id"`
	Relay        string        `json:"relay"`
	StartedAt    string        `json:"started_at"`
	EndedAt      string        `json:"ended_at"`
	TotalQueries int           `json:"total_queries"`
	Failures     int           `json:"failures"`
	Results      []ProbeResult `json:"results"`
}

var probeCmd = &cobra.Command{
	Use:   "probe <queries.json>",
	Short: "Run a batch of questions through /chat and save the answers",
	Long: `Run a batch of questions through /chat and save the answers as JSON and CSV.

queries.json is either ["q1", "q2", ...] or [{"q": "..."}, ...].`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		relayURL, _ := cmd.Flags().GetString("relay")
		outDir, _ := cmd.Flags().GetString("out")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		sleep, _ := cmd.Flags().GetDuration("sleep")
		name, _ := cmd.Flags().GetString("name")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", args[0], err)
		}
		queries, err := parseQueries(data)
		if err != nil {
			return err
		}

		client := widget.NewClient(relayURL, nil)
		summary := runProbe(cmd.Context(), client, queries, probeOptions{
			name:    name,
			timeout: timeout,
			sleep:   sleep,
			log:     cmd.OutOrStdout(),
		})
		summary.Relay = relayURL

		jsonPath, csvPath, err := saveProbe(outDir, summary)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "\nSaved:")
		fmt.Fprintln(cmd.OutOrStdout(), " -", jsonPath)
		fmt.Fprintln(cmd.OutOrStdout(), " -", csvPath)
		return nil
	},
}

func init() {
	probeCmd.Flags().String("out", "probe-results", "directory for the JSON and CSV results")
	probeCmd.Flags().Duration("timeout", 90*time.Second, "per-question timeout")
	probeCmd.Flags().Duration("sleep", 500*time.Millisecond, "pause between questions")
	probeCmd.Flags().String("name", "", "display name to prefix questions with")
}

// parseQueries accepts a JSON array of strings or of {"q": "..."} objects.
func parseQueries(data []byte) ([]string, error) {
	var arrAny []any
	if err := json.Unmarshal(data, &arrAny); err != nil {
		return nil, fmt.Errorf("invalid queries file: %w", err)
	}
	out := make([]string, 0, len(arrAny))
	for _, v := range arrAny {
		switch t := v.(type) {
		case string:
			if q := strings.TrimSpace(t); q != "" {
				out = append(out, q)
			}
		case map[string]any:
			if qv, ok := t["q"].(string); ok && strings.TrimSpace(qv) != "" {
				out = append(out, strings.TrimSpace(qv))
			}
		}
	}
	if len(out) == 0 {
		return nil, errors.New("queries file is empty or malformed")
	}
	return out, nil
}

type chatter interface {
	Chat(ctx context.Context, message string) (string, error)
}

type probeOptions struct {
	name    string
	timeout time.Duration
	sleep   time.Duration
	log     io.Writer
}

func runProbe(ctx context.Context, c chatter, queries []string, opts probeOptions) ProbeSummary {
	started := time.Now()
	summary := ProbeSummary{
		RunID:        fmt.Sprintf("probe-%s-%s", started.Format("20060102-150405"), uuid.NewString()[:8]),
		StartedAt:    started.Format(time.RFC3339),
		TotalQueries: len(queries),
		Results:      make([]ProbeResult, 0, len(queries)),
	}

	for i, q := range queries {
		if ctx.Err() != nil {
			break
		}
		msg := q
		if opts.name != "" {
			msg = opts.name + ": " + q
		}

		qctx, cancel := ctx, context.CancelFunc(func() {})
		if opts.timeout > 0 {
			qctx, cancel = context.WithTimeout(ctx, opts.timeout)
		}
		t0 := time.Now()
		resp, err := c.Chat(qctx, msg)
		cancel()

		r := ProbeResult{
			Query:      q,
			Response:   strings.TrimSpace(resp),
			DurationMs: time.Since(t0).Milliseconds(),
			Timestamp:  time.Now().Format(time.RFC3339),
		}
		if err != nil {
			r.Error = err.Error()
		}
		r.Fallback = r.Response == svc.ErrorReply || r.Response == svc.NoResponseReply
		if r.Error != "" || r.Fallback {
			summary.Failures++
		}
		summary.Results = append(summary.Results, r)
		if opts.log != nil {
			fmt.Fprintf(opts.log, "[probe] %s -> %dms error=%v fallback=%v\n", truncate(q, 64), r.DurationMs, r.Error != "", r.Fallback)
		}

		if opts.sleep > 0 && i < len(queries)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(opts.sleep):
			}
		}
	}
	summary.EndedAt = time.Now().Format(time.RFC3339)
	return summary
}

func saveProbe(outDir string, summary ProbeSummary) (jsonPath, csvPath string, err error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create results dir: %w", err)
	}
	jsonPath = filepath.Join(outDir, summary.RunID+".json")
	csvPath = filepath.Join(outDir, summary.RunID+".csv")
	if err := writeJSON(jsonPath, summary); err != nil {
		return "", "", fmt.Errorf("failed to write JSON: %w", err)
	}
	if err := writeCSV(csvPath, summary.Results); err != nil {
		return "", "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return jsonPath, csvPath, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCSV(path string, items []ProbeResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	// header
	_ = w.Write([]string{"query", "duration_ms", "fallback", "error", "response"})
	for _, it := range items {
		_ = w.Write([]string{
			it.Query,
			strconv.FormatInt(it.DurationMs, 10),
			strconv.FormatBool(it.Fallback),
			it.Error,
			it.Response,
		})
	}
	w.Flush()
	return w.Error()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
