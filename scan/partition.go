package scan

import "runtime"

// maxWorkers caps the worker pool so a full 65535-port range doesn't spawn
// thousands of goroutines fighting over ephemeral sockets.
const maxWorkers = 16

// DefaultWorkerCap derives the worker cap from available parallelism,
// bounded by maxWorkers.
func DefaultWorkerCap() int {
	n := runtime.NumCPU()
	if n > maxWorkers {
		n = maxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// partitionPorts splits ports into contiguous, non-overlapping chunks, one
// per worker. At most limit chunks are produced, never more chunks than ports,
// and no chunk is empty. The last chunk may be shorter than the rest.
func partitionPorts(ports []uint16, limit int) [][]uint16 {
	n := len(ports)
	if n == 0 {
		return nil
	}
	workers := limit
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	chunkSize := (n + workers - 1) / workers

	chunks := make([][]uint16, 0, workers)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, ports[start:end])
	}
	return chunks
}
