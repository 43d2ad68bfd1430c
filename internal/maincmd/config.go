package maincmd

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/mna/embervm/vm"
)

// envConfig mirrors vm.Config's tunable fields so they can be overridden
// from the environment, layering over built-in defaults the same way CLI
// flags do.
type envConfig struct {
	ValueStack  int  `env:"EMBERVM_VALUE_STACK"`
	FrameStack  int  `env:"EMBERVM_FRAME_STACK"`
	RootStack   int  `env:"EMBERVM_ROOT_STACK"`
	InitialHeap int  `env:"EMBERVM_INITIAL_HEAP"`
	MinHeap     int  `env:"EMBERVM_MIN_HEAP"`
	HeapGrowth  int  `env:"EMBERVM_HEAP_GROWTH"`
	StressGC    bool `env:"EMBERVM_STRESS_GC"`
}

// vmConfig builds a vm.Config from the process environment, with stressGC
// (the --stress-gc flag) OR'd in on top of any EMBERVM_STRESS_GC override.
func vmConfig(stressGC bool) (vm.Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return vm.Config{}, fmt.Errorf("parsing environment config: %w", err)
	}
	return vm.Config{
		ValueStackCapacity: ec.ValueStack,
		FrameStackCapacity: ec.FrameStack,
		RootStackCapacity:  ec.RootStack,
		InitialHeapSize:    ec.InitialHeap,
		MinHeapSize:        ec.MinHeap,
		HeapGrowthPercent:  ec.HeapGrowth,
		StressGC:           stressGC || ec.StressGC,
	}, nil
}
