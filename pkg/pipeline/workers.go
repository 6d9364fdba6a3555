package pipeline

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// meminfoPath is a variable for tests.
var meminfoPath = "/proc/meminfo"

// AutoWorkers sizes the worker pool: one worker per CPU, capped by the
// memory available for rendering sessions and by the number of files.
// It never returns less than 1.
func AutoWorkers(files, memoryPerWorkerMB int) int {
	n := runtime.NumCPU()
	if memoryPerWorkerMB > 0 {
		if avail := availableMemoryMB(); avail > 0 {
			n = min(n, avail/memoryPerWorkerMB)
		}
	}
	if files > 0 {
		n = min(n, files)
	}
	return max(n, 1)
}

// availableMemoryMB reads MemAvailable from /proc/meminfo. It returns 0
// when the value is unknown.
func availableMemoryMB() int {
	f, err := os.Open(meminfoPath)
	if err != nil {
		return 0
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		rest, ok := strings.CutPrefix(sc.Text(), "MemAvailable:")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return 0
		}
		kb, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0
		}
		return kb / 1024
	}
	return 0
}

// partition distributes n items over workers round-robin and returns the
// item indices of each worker.
func partition(n, workers int) [][]int {
	parts := make([][]int, workers)
	for i := range n {
		parts[i%workers] = append(parts[i%workers], i)
	}
	return parts
}
