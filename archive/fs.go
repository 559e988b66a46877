package archive

import (
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arloliu/jobscan/errs"
)

// Version is the job archive layout version this package understands. An
// archive whose version.txt names a different version is rejected; an
// archive without version.txt is accepted as-is.
const Version uint64 = 1

// JobKey identifies one job inside an archive.
type JobKey struct {
	// Cluster is the cluster the job ran on.
	Cluster string
	// JobID is the job's numeric identifier within its cluster.
	JobID int64
	// StartTime is the job's start as a Unix timestamp in seconds. A job ID
	// alone is not unique over an archive's lifetime; the pair is.
	StartTime int64
}

func (k JobKey) String() string {
	return fmt.Sprintf("%s/%d/%d", k.Cluster, k.JobID, k.StartTime)
}

// FsArchive is a read-only view of a file-system job archive.
//
// The cluster list is captured when the archive is opened; clusters added
// afterwards are picked up by a fresh FsArchive.
type FsArchive struct {
	root     string
	clusters []string
}

// NewFsArchive opens the job archive rooted at root.
//
// The root must be a readable directory. When a version.txt is present its
// content must match Version.
//
// Parameters:
//   - root: Path of the archive's top-level directory
//
// Returns:
//   - *FsArchive: Archive handle with the cluster list loaded
//   - error: errs.ErrInvalidArchive when the root is missing, not a
//     directory, unreadable, or carries an unsupported version
func NewFsArchive(root string) (*FsArchive, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidArchive, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", errs.ErrInvalidArchive, root)
	}

	if err := checkVersion(root); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidArchive, root, err)
	}

	ar := &FsArchive{root: root}
	for _, entry := range entries {
		if entry.IsDir() {
			ar.clusters = append(ar.clusters, entry.Name())
		}
	}

	return ar, nil
}

func checkVersion(root string) error {
	raw, err := os.ReadFile(filepath.Join(root, "version.txt"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("%w: reading version.txt: %v", errs.ErrInvalidArchive, err)
	}

	version, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed version.txt: %v", errs.ErrInvalidArchive, err)
	}
	if version != Version {
		return fmt.Errorf("%w: unsupported archive version %d, need %d", errs.ErrInvalidArchive, version, Version)
	}

	return nil
}

// Root returns the archive's top-level directory.
func (ar *FsArchive) Root() string {
	return ar.root
}

// Clusters returns the cluster names found when the archive was opened, in
// directory order.
func (ar *FsArchive) Clusters() []string {
	return ar.clusters
}

// jobDir resolves the directory holding one job's files.
func (ar *FsArchive) jobDir(key JobKey) string {
	lvl1 := strconv.FormatInt(key.JobID/1000, 10)
	lvl2 := fmt.Sprintf("%03d", key.JobID%1000)

	return filepath.Join(ar.root, key.Cluster, lvl1, lvl2, strconv.FormatInt(key.StartTime, 10))
}

// Exists reports whether any data file variant exists for the job.
func (ar *FsArchive) Exists(key JobKey) bool {
	dir := ar.jobDir(key)
	for _, df := range dataFiles {
		if _, err := os.Stat(filepath.Join(dir, df.name)); err == nil {
			return true
		}
	}

	return false
}

// OpenJobData opens the job's metric document for reading, decompressing on
// the fly. Variants are probed in the dataFiles order; the first present
// wins. The caller must close the returned reader.
//
// Returns:
//   - io.ReadCloser: Decompressed document stream
//   - error: errs.ErrJobNotFound when no variant exists, or the underlying
//     open/decompressor error
func (ar *FsArchive) OpenJobData(key JobKey) (io.ReadCloser, error) {
	dir := ar.jobDir(key)
	for _, df := range dataFiles {
		path := filepath.Join(dir, df.name)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		return Open(path, df.typ)
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrJobNotFound, key)
}

// LoadJobData reads the job's whole metric document into memory. Callers
// that scan many jobs should prefer OpenJobData with a reused buffer.
func (ar *FsArchive) LoadJobData(key JobKey) ([]byte, error) {
	rc, err := ar.OpenJobData(key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading job data of %s: %w", key, err)
	}

	return data, nil
}

// Jobs iterates over every job directory of a cluster in directory order.
// Directory names that do not parse as job shards or start times are
// skipped; read failures below the cluster directory are yielded as errors
// with a zero JobKey. A yielded key is not a promise that a data file
// exists, only that the job's directory does.
func (ar *FsArchive) Jobs(cluster string) iter.Seq2[JobKey, error] {
	return func(yield func(JobKey, error) bool) {
		clusterDir := filepath.Join(ar.root, cluster)
		lvl1Dirs, err := os.ReadDir(clusterDir)
		if err != nil {
			yield(JobKey{}, fmt.Errorf("%w: reading cluster %q: %v", errs.ErrInvalidArchive, cluster, err))
			return
		}

		for _, lvl1 := range lvl1Dirs {
			// cluster.json and friends sit next to the job shards
			if !lvl1.IsDir() {
				continue
			}
			high, err := strconv.ParseInt(lvl1.Name(), 10, 64)
			if err != nil {
				continue
			}

			lvl2Dirs, err := os.ReadDir(filepath.Join(clusterDir, lvl1.Name()))
			if err != nil {
				if !yield(JobKey{}, err) {
					return
				}
				continue
			}

			for _, lvl2 := range lvl2Dirs {
				if !lvl2.IsDir() {
					continue
				}
				low, err := strconv.ParseInt(lvl2.Name(), 10, 64)
				if err != nil {
					continue
				}

				startDirs, err := os.ReadDir(filepath.Join(clusterDir, lvl1.Name(), lvl2.Name()))
				if err != nil {
					if !yield(JobKey{}, err) {
						return
					}
					continue
				}

				for _, startDir := range startDirs {
					if !startDir.IsDir() {
						continue
					}
					startTime, err := strconv.ParseInt(startDir.Name(), 10, 64)
					if err != nil {
						continue
					}

					key := JobKey{
						Cluster:   cluster,
						JobID:     high*1000 + low,
						StartTime: startTime,
					}
					if !yield(key, nil) {
						return
					}
				}
			}
		}
	}
}
