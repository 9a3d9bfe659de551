// Package system holds process-level helpers for the CLI: file descriptor
// limits and worker sizing for batch compilation.
package system

import (
	"fmt"
	"log"
	"runtime"
	"syscall"

	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit so batch loads over many
// presentation directories do not run out of descriptors.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read the file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not raise the file limit: %v", err)
	} else {
		fmt.Printf("[*] Open file limit raised to %d\n", rLimit.Cur)
	}
}

// perWorkerBytes is a generous upper bound on what compiling one
// presentation costs; presentations are text, so memory almost never binds
// before CPU does.
const perWorkerBytes = 64 << 20

// OptimalWorkers sizes the batch worker pool from the CPU count, capped by
// available memory when the host is under pressure.
func OptimalWorkers() int {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return workers
	}
	memCap := int(vm.Available / perWorkerBytes)
	if memCap < 1 {
		memCap = 1
	}
	if memCap < workers {
		workers = memCap
	}
	return workers
}
