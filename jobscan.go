// Package jobscan extracts per-node data payloads from job metric JSON
// documents without building a document object model.
//
// A job metric document maps metric names to metric records; each record may
// carry a "series" array of per-node records, and each node record may carry
// a "data" member holding either an array of samples or a scalar reference
// string. Jobscan locates exactly those "data" members in two passes over the
// bytes and nothing else:
//
//  1. The token package flattens the document into an ordered array of
//     typed tokens (one cheap forward scan, no tree, no value decoding).
//  2. The walk package drives a fixed schema state machine over the token
//     array (a second forward scan) and emits one payload descriptor per
//     discovered "data" member.
//
// # Core Features
//
//   - Flat token representation: byte spans into the source, never decoded
//     copies, so a document scan allocates close to nothing
//   - Counter-based traversal: document completion and subtree skipping are
//     integer arithmetic, with no recursion and no backtracking
//   - Tolerant schema walking: unknown members at any level are skipped;
//     only malformed JSON and schema-breaking shapes fail the scan
//   - Hash-based metric identification (64-bit xxHash64), matching the IDs
//     used by downstream metric stores
//   - Job archive access: sharded directory layout with transparent
//     gzip/zstd/lz4 decompression
//   - Concurrent batch scanning across a whole archive with a bounded
//     worker pool
//
// # Basic Usage
//
// Scanning one document held in memory:
//
//	result, err := jobscan.ScanBytes(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range result.Payloads {
//	    fmt.Printf("%s[%d]: %d samples\n", p.Metric, p.NodeIndex, p.Count)
//	}
//
// Scanning one file, decompressed by extension:
//
//	result, err := jobscan.ScanFile("job-archive/fritz/0/042/1000/data.json.gz")
//
// Scanning a whole job archive with 8 workers:
//
//	ar, err := archive.NewFsArchive("job-archive")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stats, err := jobscan.ScanArchive(ctx, ar, jobscan.WithWorkers(8))
//	fmt.Printf("scanned %d jobs\n", stats.Total().Jobs)
//
// # Package Structure
//
// This package provides one-call wrappers around the token, walk, and archive
// packages, covering the common scan paths. Use those packages directly for
// fine-grained control: token.Tokenize for the raw token array, walk.NewWalker
// for traversal with a trace hook, archive.FsArchive for job enumeration.
package jobscan

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/jobscan/archive"
	"github.com/arloliu/jobscan/internal/collision"
	"github.com/arloliu/jobscan/internal/hash"
	"github.com/arloliu/jobscan/internal/options"
	"github.com/arloliu/jobscan/internal/pool"
	"github.com/arloliu/jobscan/token"
	"github.com/arloliu/jobscan/walk"
)

// ScanBytes scans one job metric document held in memory and returns its
// payload descriptors.
//
// The source bytes are only read during the call; the returned result owns
// its strings, so the caller may reuse or discard src afterwards.
//
// Parameters:
//   - src: Complete JSON document bytes
//   - opts: Optional walker configuration (see walk.WalkerOption)
//
// Returns:
//   - walk.Result: Payload descriptors plus scan counters
//   - error: errs.ErrInvalidJSON / errs.ErrTruncatedJSON from tokenizing, or
//     a schema error (errs.ErrUnexpectedRoot, errs.ErrUnexpectedKeyType,
//     errs.ErrUnexpectedValueType) from walking
//
// Example:
//
//	result, err := jobscan.ScanBytes(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range result.Payloads {
//	    if p.IsScalar() {
//	        fmt.Printf("%s[%d] -> %s\n", p.Metric, p.NodeIndex, p.Scalar)
//	    } else {
//	        fmt.Printf("%s[%d]: %d samples\n", p.Metric, p.NodeIndex, p.Count)
//	    }
//	}
func ScanBytes(src []byte, opts ...walk.WalkerOption) (walk.Result, error) {
	doc, err := token.Tokenize(src)
	if err != nil {
		return walk.Result{}, err
	}

	walker, err := walk.NewWalker(doc, src, opts...)
	if err != nil {
		return walk.Result{}, err
	}

	return walker.Walk()
}

// ScanReader reads one job metric document from r into a pooled buffer and
// scans it. The buffer returns to the pool before ScanReader returns, which
// keeps steady-state allocations flat when scanning many documents.
//
// Parameters:
//   - r: Document source, read to EOF
//   - opts: Optional walker configuration
//
// Returns:
//   - walk.Result: Payload descriptors plus scan counters
//   - error: The read error, or any ScanBytes error
func ScanReader(r io.Reader, opts ...walk.WalkerOption) (walk.Result, error) {
	buf := pool.GetDocBuffer()
	defer pool.PutDocBuffer(buf)

	if _, err := buf.ReadFrom(r); err != nil {
		return walk.Result{}, fmt.Errorf("reading document: %w", err)
	}

	return ScanBytes(buf.Bytes(), opts...)
}

// ScanFile scans one document file, decompressing .gz, .zst, and .lz4 files
// by extension. Any other extension is treated as plain JSON.
//
// Parameters:
//   - path: Document file path
//   - opts: Optional walker configuration
//
// Returns:
//   - walk.Result: Payload descriptors plus scan counters
//   - error: The open/decompress error, or any ScanBytes error
//
// Example:
//
//	result, err := jobscan.ScanFile("testdata/data.json.gz")
func ScanFile(path string, opts ...walk.WalkerOption) (walk.Result, error) {
	rc, err := archive.OpenFile(path)
	if err != nil {
		return walk.Result{}, err
	}
	defer rc.Close()

	return ScanReader(rc, opts...)
}

// ScanJob scans one job's metric document from an archive.
//
// Parameters:
//   - ar: Open job archive
//   - key: Job to scan
//   - opts: Optional walker configuration
//
// Returns:
//   - walk.Result: Payload descriptors plus scan counters
//   - error: errs.ErrJobNotFound when the job has no data file, or any
//     ScanReader error
func ScanJob(ar *archive.FsArchive, key archive.JobKey, opts ...walk.WalkerOption) (walk.Result, error) {
	rc, err := ar.OpenJobData(key)
	if err != nil {
		return walk.Result{}, err
	}
	defer rc.Close()

	return ScanReader(rc, opts...)
}

// MetricID computes the 64-bit identifier of a metric name.
//
// The identifier is the xxHash64 digest of the name, the same value carried
// by walk.Payload.MetricID, so callers can match scan output against
// pre-computed IDs without string comparisons.
//
// Example:
//
//	flopsID := jobscan.MetricID("flops_any")
//	for _, p := range result.Payloads {
//	    if p.MetricID == flopsID {
//	        // ...
//	    }
//	}
func MetricID(name string) uint64 {
	return hash.ID(name)
}

// JobHandler receives the outcome of one job scan during ScanArchive.
// Invocations are serialized, so the handler may touch shared state without
// its own locking. When err is non-nil the result is the walker's partial
// output, which may be empty.
type JobHandler func(key archive.JobKey, result walk.Result, err error)

// ClusterStats aggregates scan counters over the jobs of one cluster.
type ClusterStats struct {
	// Jobs is the number of job documents scanned, failed ones included.
	Jobs int `json:"jobs"`
	// Failed is the number of jobs whose scan returned an error.
	Failed int `json:"failed"`
	// Metrics, Nodes, Payloads and Samples sum the walk.Result counters of
	// the successfully scanned jobs.
	Metrics  int `json:"metrics"`
	Nodes    int `json:"nodes"`
	Payloads int `json:"payloads"`
	Samples  int `json:"samples"`
}

func (s *ClusterStats) add(res walk.Result) {
	s.Metrics += res.Metrics
	s.Nodes += res.Nodes
	s.Payloads += len(res.Payloads)
	s.Samples += res.Samples
}

// MetricCollision reports one metric identifier claimed by more than one
// distinct metric name during a batch scan. Collisions are effectively
// impossible for real metric vocabularies (~1 in 2^64), so a report here
// usually means corrupted documents.
type MetricCollision struct {
	ID    uint64   `json:"id"`
	Names []string `json:"names"`
}

// ArchiveStats is the outcome of a batch scan, grouped by cluster.
type ArchiveStats struct {
	Clusters map[string]*ClusterStats `json:"clusters"`
	// Collisions lists metric identifiers shared by distinct names, in
	// ascending identifier order. Nil when every name hashed uniquely.
	Collisions []MetricCollision `json:"collisions,omitempty"`
}

// Total sums the per-cluster counters.
func (s ArchiveStats) Total() ClusterStats {
	var total ClusterStats
	for _, cs := range s.Clusters {
		total.Jobs += cs.Jobs
		total.Failed += cs.Failed
		total.Metrics += cs.Metrics
		total.Nodes += cs.Nodes
		total.Payloads += cs.Payloads
		total.Samples += cs.Samples
	}

	return total
}

// archiveConfig collects the ScanArchive knobs.
type archiveConfig struct {
	workers  int
	clusters []string
	handler  JobHandler
	walkOpts []walk.WalkerOption
}

// ArchiveOption configures a ScanArchive run.
type ArchiveOption = options.Option[*archiveConfig]

// WithWorkers sets the number of concurrent scan workers. The default is
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) ArchiveOption {
	return options.New(func(cfg *archiveConfig) error {
		if n < 1 {
			return fmt.Errorf("invalid worker count %d", n)
		}
		cfg.workers = n

		return nil
	})
}

// WithClusters restricts the scan to the named clusters. The default scans
// every cluster the archive reported when it was opened.
func WithClusters(clusters ...string) ArchiveOption {
	return options.NoError(func(cfg *archiveConfig) {
		cfg.clusters = clusters
	})
}

// WithJobHandler registers a callback invoked once per scanned job, in
// completion order.
func WithJobHandler(handler JobHandler) ArchiveOption {
	return options.NoError(func(cfg *archiveConfig) {
		cfg.handler = handler
	})
}

// WithWalkerOptions forwards walker options to every per-job scan, for
// example a trace hook.
func WithWalkerOptions(opts ...walk.WalkerOption) ArchiveOption {
	return options.NoError(func(cfg *archiveConfig) {
		cfg.walkOpts = opts
	})
}

// ScanArchive scans every job document of an archive with a bounded worker
// pool and aggregates the per-cluster counters. Metric identifiers are
// checked for collisions across the whole batch; identifiers claimed by
// distinct names end up in ArchiveStats.Collisions.
//
// Each worker runs an independent tokenizer and walker, so documents are
// scanned fully in parallel. A job whose scan fails is counted in
// ClusterStats.Failed and reported to the job handler, but does not abort
// the batch; only job enumeration failures and context cancellation do.
//
// Parameters:
//   - ctx: Cancels the batch; in-flight jobs finish, queued ones are dropped
//   - ar: Open job archive
//   - opts: Optional batch configuration (workers, clusters, job handler)
//
// Returns:
//   - ArchiveStats: Per-cluster counters for all jobs processed, also on error
//   - error: Context or enumeration error that aborted the batch
//
// Example:
//
//	stats, err := jobscan.ScanArchive(ctx, ar,
//	    jobscan.WithWorkers(8),
//	    jobscan.WithClusters("fritz"),
//	    jobscan.WithJobHandler(func(key archive.JobKey, res walk.Result, err error) {
//	        if err != nil {
//	            log.Printf("%s: %v", key, err)
//	        }
//	    }),
//	)
func ScanArchive(ctx context.Context, ar *archive.FsArchive, opts ...ArchiveOption) (ArchiveStats, error) {
	cfg := &archiveConfig{
		workers:  runtime.GOMAXPROCS(0),
		clusters: ar.Clusters(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return ArchiveStats{}, err
	}

	stats := ArchiveStats{Clusters: make(map[string]*ClusterStats, len(cfg.clusters))}
	for _, cluster := range cfg.clusters {
		stats.Clusters[cluster] = &ClusterStats{}
	}

	var mu sync.Mutex
	tracker := collision.NewTracker()
	record := func(key archive.JobKey, res walk.Result, err error) {
		mu.Lock()
		defer mu.Unlock()

		cs := stats.Clusters[key.Cluster]
		cs.Jobs++
		if err != nil {
			cs.Failed++
		} else {
			cs.add(res)
			for _, p := range res.Payloads {
				tracker.Track(p.MetricID, p.Metric)
			}
		}
		if cfg.handler != nil {
			cfg.handler(key, res, err)
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	jobs := make(chan archive.JobKey)

	eg.Go(func() error {
		defer close(jobs)
		for _, cluster := range cfg.clusters {
			for key, err := range ar.Jobs(cluster) {
				if err != nil {
					return fmt.Errorf("enumerating jobs: %w", err)
				}
				select {
				case jobs <- key:
				case <-egCtx.Done():
					return egCtx.Err()
				}
			}
		}

		return nil
	})

	for range cfg.workers {
		eg.Go(func() error {
			for key := range jobs {
				res, err := ScanJob(ar, key, cfg.walkOpts...)
				record(key, res, err)
			}

			return nil
		})
	}

	err := eg.Wait()

	for id, names := range tracker.Collisions() {
		stats.Collisions = append(stats.Collisions, MetricCollision{ID: id, Names: names})
	}
	sort.Slice(stats.Collisions, func(i, j int) bool {
		return stats.Collisions[i].ID < stats.Collisions[j].ID
	})

	return stats, err
}
