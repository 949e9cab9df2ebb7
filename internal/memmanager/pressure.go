package memmanager

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Level classifies how much of the configured memory budget is in use.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// These multipliers are applied to the configured threshold to derive the
// fraction-of-system-memory cutoff for each pressure level.
const (
	criticalMultiplier = 1.0125 // 0.9 * 1.125
	highMultiplier     = 0.8
	mediumMultiplier   = 0.6
)

// classify maps a used-memory fraction to a pressure level given threshold.
func classify(fraction, threshold float64) Level {
	switch {
	case fraction >= threshold*criticalMultiplier:
		return LevelCritical
	case fraction >= threshold*highMultiplier:
		return LevelHigh
	case fraction >= threshold*mediumMultiplier:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Sampler reads the fraction of total system memory currently used by this
// process. Production code uses gopsutilSampler; tests inject a
// deterministic stand-in.
type Sampler func(ctx context.Context) (fraction float64, err error)

// gopsutilSampler reads live RSS-vs-total memory from the OS via gopsutil.
func gopsutilSampler(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	if vm.Total == 0 {
		return 0, nil
	}
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return float64(info.RSS) / float64(vm.Total), nil
}
