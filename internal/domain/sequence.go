package domain

import (
	"sync/atomic"
	"time"
)

var lastSeq atomic.Int64

// nextSeq returns a strictly increasing insertion number for list tie-breaks.
// It follows the wall clock in nanoseconds but never repeats or goes backwards within a process.
func nextSeq() int64 {
	for {
		prev := lastSeq.Load()
		next := time.Now().UnixNano()
		if next <= prev {
			next = prev + 1
		}
		if lastSeq.CompareAndSwap(prev, next) {
			return next
		}
	}
}
