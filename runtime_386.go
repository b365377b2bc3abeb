//go:build 386

package main

import "runtime"

func init() {
	// 386 targets are mostly emulated (iSH on iOS) and crawl with the
	// loader, watcher and event loop goroutines spread over threads.
	runtime.GOMAXPROCS(1)
}
