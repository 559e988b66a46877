// Package archive loads job metric documents from a file-system job archive.
//
// A job archive is a directory tree keyed by cluster, job ID and job start
// time. Job IDs are sharded into a thousands level and a zero-padded
// remainder level to keep directories small:
//
//	<root>/
//	    version.txt                 layout version, optional
//	    <cluster>/
//	        cluster.json            ignored by this package
//	        <jobID/1000>/<jobID%1000>/<startTime>/
//	            data.json           the metric document, in one of the
//	            data.json.gz        compression variants; the first variant
//	            data.json.zst       found wins
//	            data.json.lz4
//
// The package stops at delivering document bytes: it never parses the JSON
// it loads. Feed the bytes to token.Tokenize and walk.Walker, or use the
// jobscan facade which wires the three together.
//
// # Usage
//
//	ar, err := archive.NewFsArchive("/var/lib/job-archive")
//	if err != nil {
//	    return err
//	}
//	for key, err := range ar.Jobs("fritz") {
//	    if err != nil {
//	        return err
//	    }
//	    rc, err := ar.OpenJobData(key)
//	    ...
//	}
//
// OpenFile opens a single document outside any archive layout, decompressing
// by file extension. All readers decompress streams on the fly; gzip uses
// github.com/klauspost/compress, LZ4 uses github.com/pierrec/lz4, and
// Zstandard picks github.com/valyala/gozstd on cgo builds with a pure Go
// fallback from github.com/klauspost/compress otherwise.
package archive
