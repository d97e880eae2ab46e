package system

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Sample is one reading of host and process load.
type Sample struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	ProcessRSS    uint64  `json:"process_rss_bytes"`
}

// GetCPUUsage returns the current CPU usage as a percentage
func GetCPUUsage() (float64, error) {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) == 0 {
		return 0, fmt.Errorf("could not get CPU usage")
	}
	return percentages[0], nil
}

// GetMemoryUsage returns the current memory usage as a percentage
func GetMemoryUsage() (float64, error) {
	virtualMem, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return virtualMem.UsedPercent, nil
}

// GetProcessRSS returns the resident set size of this process in bytes.
func GetProcessRSS() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, fmt.Errorf("could not inspect process: %w", err)
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("could not read process memory: %w", err)
	}
	return info.RSS, nil
}

// Collect takes a Sample. Readings that fail are left at zero and the first
// error is returned alongside the partial sample.
func Collect() (Sample, error) {
	var s Sample
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	var err error
	if s.CPUPercent, err = GetCPUUsage(); err != nil {
		keep(err)
	}
	if s.MemoryPercent, err = GetMemoryUsage(); err != nil {
		keep(err)
	}
	if s.ProcessRSS, err = GetProcessRSS(); err != nil {
		keep(err)
	}
	return s, firstErr
}
