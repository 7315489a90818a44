// Package utils holds helpers shared by the test suites.
package utils

import (
	"runtime"
	"testing"
	"time"
)

// GoroutineLeakDetector fails a test when goroutines started during it are
// still running once it finishes
type GoroutineLeakDetector struct {
	t        testing.TB
	baseline int
	allowed  int
	timeout  time.Duration
}

// NewGoroutineLeakDetector records the current goroutine count as baseline
func NewGoroutineLeakDetector(t testing.TB) *GoroutineLeakDetector {
	return &GoroutineLeakDetector{
		t:        t,
		baseline: runtime.NumGoroutine(),
		timeout:  2 * time.Second,
	}
}

// VerifyNoLeaks checks for leaked goroutines when t finishes
func VerifyNoLeaks(t testing.TB) {
	d := NewGoroutineLeakDetector(t)
	t.Cleanup(d.Check)
}

// AllowGrowth tolerates n goroutines above the baseline
func (d *GoroutineLeakDetector) AllowGrowth(n int) *GoroutineLeakDetector {
	d.allowed = n
	return d
}

// WithTimeout bounds how long Check waits for goroutines to exit
func (d *GoroutineLeakDetector) WithTimeout(timeout time.Duration) *GoroutineLeakDetector {
	d.timeout = timeout
	return d
}

// Check polls until the count returns to the baseline or the timeout passes
func (d *GoroutineLeakDetector) Check() {
	d.t.Helper()

	limit := d.baseline + d.allowed
	deadline := time.Now().Add(d.timeout)
	count := runtime.NumGoroutine()
	for count > limit && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
		count = runtime.NumGoroutine()
	}
	if count <= limit {
		return
	}

	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	d.t.Errorf("goroutine leak: %d running, baseline %d, allowed growth %d\n%s",
		count, d.baseline, d.allowed, buf[:n])
}
