package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/jobscan"
	"github.com/arloliu/jobscan/archive"
	"github.com/arloliu/jobscan/walk"
)

var (
	archiveWorkers  int
	archiveClusters []string
)

var archiveCmd = &cobra.Command{
	Use:   "archive <root>",
	Short: "Scan every job document of a job archive",
	Long: `Walks a sharded job archive and scans every job's metric document with
a pool of concurrent workers. Jobs whose documents fail to scan are counted
and logged but do not stop the batch; the command exits non-zero when any
job failed.

Example:
  jobscan archive /var/lib/job-archive
  jobscan archive --workers 16 --clusters fritz,alex /var/lib/job-archive
  jobscan archive --json /var/lib/job-archive > stats.json`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().IntVar(&archiveWorkers, "workers", 0, "Concurrent scan workers (default: config value or GOMAXPROCS)")
	archiveCmd.Flags().StringSliceVar(&archiveClusters, "clusters", nil, "Restrict the scan to these clusters")
}

func runArchive(cmd *cobra.Command, args []string) error {
	root := args[0]

	ar, err := archive.NewFsArchive(root)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown: finish in-flight jobs, drop the queue.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	workers := cfg.Workers
	if archiveWorkers > 0 {
		workers = archiveWorkers
	}
	clusters := cfg.Clusters
	if len(archiveClusters) > 0 {
		clusters = archiveClusters
	}

	opts := []jobscan.ArchiveOption{
		jobscan.WithWorkers(workers),
		jobscan.WithJobHandler(func(key archive.JobKey, result walk.Result, err error) {
			if err != nil {
				logger.Warn("job scan failed", zap.String("job", key.String()), zap.Error(err))
				return
			}
			logger.Debug("job scanned",
				zap.String("job", key.String()),
				zap.Int("payloads", len(result.Payloads)))
		}),
	}
	if len(clusters) > 0 {
		opts = append(opts, jobscan.WithClusters(clusters...))
	}

	start := time.Now()
	stats, err := jobscan.ScanArchive(ctx, ar, opts...)
	if err != nil {
		return fmt.Errorf("scanning archive %s: %w", root, err)
	}

	total := stats.Total()
	logger.Info("archive scan finished",
		zap.Int("jobs", total.Jobs),
		zap.Int("failed", total.Failed),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)))
	for _, col := range stats.Collisions {
		logger.Warn("metric identifier collision",
			zap.Uint64("id", col.ID),
			zap.Strings("names", col.Names))
	}

	if jsonOut {
		if err := writeJSON(os.Stdout, stats); err != nil {
			return err
		}
	} else {
		printArchiveStats(os.Stdout, stats)
	}

	if total.Failed > 0 {
		return fmt.Errorf("%d of %d jobs failed to scan", total.Failed, total.Jobs)
	}

	return nil
}

func printArchiveStats(w io.Writer, stats jobscan.ArchiveStats) {
	names := make([]string, 0, len(stats.Clusters))
	for name := range stats.Clusters {
		names = append(names, name)
	}
	sort.Strings(names)

	const rowFmt = "%-16s %8s %8s %9s %8s %9s %12s\n"
	fmt.Fprintf(w, rowFmt, "CLUSTER", "JOBS", "FAILED", "METRICS", "NODES", "PAYLOADS", "SAMPLES")
	printRow := func(name string, cs jobscan.ClusterStats) {
		fmt.Fprintf(w, rowFmt, name,
			fmt.Sprint(cs.Jobs), fmt.Sprint(cs.Failed), fmt.Sprint(cs.Metrics),
			fmt.Sprint(cs.Nodes), fmt.Sprint(cs.Payloads), fmt.Sprint(cs.Samples))
	}

	for _, name := range names {
		printRow(name, *stats.Clusters[name])
	}
	if len(names) > 1 {
		printRow("TOTAL", stats.Total())
	}
}
