package executor

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// MemSampler polls the interpreter's resident set size and keeps the peak
// observed since the last baseline, so per-script memory usage can be
// reported as a delta over a pre-first-block baseline.
type MemSampler struct {
	proc   *process.Process
	cancel context.CancelFunc

	mu       sync.Mutex
	baseline uint64
	peak     uint64
}

// NewMemSampler starts sampling the given pid every interval. A zero
// interval defaults to 50ms.
func NewMemSampler(pid int, interval time.Duration) (*MemSampler, error) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &MemSampler{proc: proc, cancel: cancel}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sample()
			}
		}
	}()
	return s, nil
}

func (s *MemSampler) sample() {
	info, err := s.proc.MemoryInfo()
	if err != nil {
		return
	}
	s.mu.Lock()
	if info.RSS > s.peak {
		s.peak = info.RSS
	}
	s.mu.Unlock()
}

// Baseline records the current RSS as the reference point and clears the
// peak.
func (s *MemSampler) Baseline() {
	info, err := s.proc.MemoryInfo()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.baseline = info.RSS
		s.peak = info.RSS
	} else {
		s.baseline = 0
		s.peak = 0
	}
}

// PeakDeltaMB returns the peak RSS increase over the baseline in
// megabytes.
func (s *MemSampler) PeakDeltaMB() float64 {
	s.sample()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.peak <= s.baseline {
		return 0
	}
	return float64(s.peak-s.baseline) / (1024 * 1024)
}

// Stop ends sampling.
func (s *MemSampler) Stop() { s.cancel() }
