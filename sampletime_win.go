//go:build windows

package abcalc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// A relative TimeStamp with the highest possible precision on the current runtime system.
// Values are only comparable between two calls to SampleTime() within the same process.
type TimeStamp = int64

var (
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")
	procFreq    = modkernel32.NewProc("QueryPerformanceFrequency")
	procCounter = modkernel32.NewProc("QueryPerformanceCounter")

	qpcFrequency = getFrequency()
)

// getFrequency returns frequency in ticks per second.
func getFrequency() int64 {
	var freq int64
	r1, _, err := procFreq.Call(uintptr(unsafe.Pointer(&freq)))
	if r1 == 0 {
		panic(fmt.Sprintf("QueryPerformanceFrequency failed: %v", err))
	}
	return freq
}

// SampleTime returns the current QueryPerformanceCounter tick count. time.Now on Windows
// only resolves to about 100ns, the counter is finer.
func SampleTime() TimeStamp {
	var qpc int64
	procCounter.Call(uintptr(unsafe.Pointer(&qpc)))
	return qpc
}

// DiffTimeStamps returns the nanoseconds between two timestamps. It returns a negative value
// if tLater is actually earlier than tEarlier.
func DiffTimeStamps(tEarlier, tLater TimeStamp) int64 {
	ticks := tLater - tEarlier
	sec := ticks / qpcFrequency
	rem := ticks % qpcFrequency
	return sec*1_000_000_000 + rem*1_000_000_000/qpcFrequency
}
