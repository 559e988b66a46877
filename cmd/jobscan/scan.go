package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/jobscan"
	"github.com/arloliu/jobscan/walk"
)

var traceScan bool

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Scan one job metric document and report its payloads",
	Long: `Scans a single job metric document and prints one line per discovered
"data" payload. Files ending in .gz, .zst or .lz4 are decompressed on the
fly; anything else is read as plain JSON.

Example:
  jobscan scan job-archive/fritz/0/042/1688719043/data.json.gz
  jobscan scan --trace data.json 2>trace.log
  jobscan scan --json data.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&traceScan, "trace", false, "Write the walker state trace to stderr")
}

func runScan(cmd *cobra.Command, args []string) error {
	path := args[0]

	var opts []walk.WalkerOption
	if traceScan {
		opts = append(opts, walk.WithTraceWriter(os.Stderr))
	}

	start := time.Now()
	result, err := jobscan.ScanFile(path, opts...)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", path, err)
	}
	logger.Debug("document scanned",
		zap.String("file", path),
		zap.Int("payloads", len(result.Payloads)),
		zap.Duration("elapsed", time.Since(start)))

	if jsonOut {
		return writeJSON(os.Stdout, newScanReport(path, result))
	}

	printScanReport(os.Stdout, path, result)

	return nil
}

// payloadReport is the JSON shape of one payload descriptor.
type payloadReport struct {
	Metric    string `json:"metric"`
	MetricID  string `json:"metricId"`
	NodeIndex int    `json:"nodeIndex"`
	Samples   int    `json:"samples,omitempty"`
	Scalar    string `json:"scalar,omitempty"`
}

// scanReport is the JSON shape of one document scan.
type scanReport struct {
	File     string          `json:"file"`
	Metrics  int             `json:"metrics"`
	Nodes    int             `json:"nodes"`
	Samples  int             `json:"samples"`
	Payloads []payloadReport `json:"payloads"`
}

func newScanReport(path string, result walk.Result) scanReport {
	report := scanReport{
		File:     path,
		Metrics:  result.Metrics,
		Nodes:    result.Nodes,
		Samples:  result.Samples,
		Payloads: make([]payloadReport, 0, len(result.Payloads)),
	}
	for _, p := range result.Payloads {
		row := payloadReport{
			Metric:    p.Metric,
			MetricID:  fmt.Sprintf("%016x", p.MetricID),
			NodeIndex: p.NodeIndex,
		}
		if p.IsScalar() {
			row.Scalar = p.Scalar
		} else {
			row.Samples = p.Count
		}
		report.Payloads = append(report.Payloads, row)
	}

	return report
}

func printScanReport(w io.Writer, path string, result walk.Result) {
	fmt.Fprintf(w, "%s: %d metrics, %d nodes, %d payloads, %d samples\n",
		path, result.Metrics, result.Nodes, len(result.Payloads), result.Samples)
	for _, p := range result.Payloads {
		if p.IsScalar() {
			fmt.Fprintf(w, "  %-24s node %-4d -> %s\n", p.Metric, p.NodeIndex, p.Scalar)
		} else {
			fmt.Fprintf(w, "  %-24s node %-4d %d samples\n", p.Metric, p.NodeIndex, p.Count)
		}
	}
}
