package main

import (
	"fmt"
	"log"
	"os"
	"runtime/pprof"
)

// startCpuProfiler writes a CPU profile to filename until the returned
// function is called. An empty filename disables profiling.
func startCpuProfiler(filename string) (func(), error) {
	if filename == "" {
		return func() {}, nil
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}

	return func() {
		pprof.StopCPUProfile()
		err := f.Close()
		if err != nil {
			log.Fatal("could not close profile file: ", err)
		}
	}, nil
}
