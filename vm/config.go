package vm

import "go.uber.org/zap"

const (
	defaultValueStackCapacity = 128
	defaultFrameStackCapacity = 512
	defaultRootStackCapacity  = 16

	defaultInitialHeapSize   = 10 * 1024 * 1024
	defaultMinHeapSize       = 1 * 1024 * 1024
	defaultHeapGrowthPercent = 50
)

// Config configures a new VM. All fields are optional; the zero value of
// Config produces a VM with sensible defaults.
type Config struct {
	// ValueStackCapacity, FrameStackCapacity and RootStackCapacity size the
	// three per-fiber stacks a Fiber is created with.
	ValueStackCapacity int
	FrameStackCapacity int
	RootStackCapacity  int

	// InitialHeapSize, MinHeapSize and HeapGrowthPercent drive the collector's
	// nextGC threshold computation.
	InitialHeapSize   int
	MinHeapSize       int
	HeapGrowthPercent int

	// StressGC forces a collection on every allocation, trading performance
	// for maximal GC-bug-finding coverage.
	StressGC bool

	// Logger receives one structured Debug entry per GC cycle. Fiber
	// suspension and foreign-function registration are not logged. Defaults
	// to a no-op logger: silence by default is the safer choice for an
	// embeddable core.
	Logger *zap.Logger

	// UserData is an opaque passthrough available to foreign functions via
	// VM.UserData.
	UserData any
}

func (c Config) valueStackCap() int {
	if c.ValueStackCapacity > 0 {
		return c.ValueStackCapacity
	}
	return defaultValueStackCapacity
}

func (c Config) frameStackCap() int {
	if c.FrameStackCapacity > 0 {
		return c.FrameStackCapacity
	}
	return defaultFrameStackCapacity
}

func (c Config) rootStackCap() int {
	if c.RootStackCapacity > 0 {
		return c.RootStackCapacity
	}
	return defaultRootStackCapacity
}
