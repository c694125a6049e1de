package common

import (
	"os"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

const (
	// Route simulation allocates short-lived big.Int values in bursts, a
	// higher GOGC keeps the calculator pool warm between requests.
	defaultGOGC     = 400
	defaultMemLimit = 4 * 1024 * 1024 * 1024 // 4GB
)

// InitRuntime applies GC and scheduler defaults unless GOGC, GOMAXPROCS or
// GOMEMLIMIT are set in the environment.
func InitRuntime() {
	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(defaultGOGC)
		log.Info().Int("GOGC", defaultGOGC).Msg("[runtime] Set GOGC")
	}

	if os.Getenv("GOMAXPROCS") == "" {
		procs := runtime.NumCPU()
		if procs > 2 {
			// leave a core for the OS and the HTTP accept loop
			procs--
		}
		runtime.GOMAXPROCS(procs)
		log.Info().
			Int("GOMAXPROCS", procs).
			Int("total_cpu", runtime.NumCPU()).
			Msg("[runtime] Set GOMAXPROCS")
	}

	if os.Getenv("GOMEMLIMIT") == "" {
		debug.SetMemoryLimit(defaultMemLimit)
		log.Info().
			Int64("GOMEMLIMIT_bytes", defaultMemLimit).
			Msg("[runtime] Set memory limit")
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	log.Info().
		Int("num_cpu", runtime.NumCPU()).
		Int("gomaxprocs", runtime.GOMAXPROCS(0)).
		Uint64("heap_alloc_mb", memStats.HeapAlloc/1024/1024).
		Str("go_version", runtime.Version()).
		Msg("[runtime] Current runtime settings")
}
