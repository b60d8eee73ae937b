// Package statsview runs a local HTTP server with live runtime statistics,
// useful when a long test ROM run is slower than expected.
//
// After launch, graphs are served at
//
//	<addr>/debug/statsview
//
// and the standard pprof endpoints at
//
//	<addr>/debug/pprof/
package statsview

import (
	"log/slog"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// DefaultAddress is used when Launch is given an empty address.
const DefaultAddress = "localhost:12600"

const path = "/debug/statsview"

// Launch starts the server on a new goroutine and returns the URL of the
// statistics page. The server runs until the process exits.
func Launch(addr string, log *slog.Logger) string {
	if addr == "" {
		addr = DefaultAddress
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go func() {
		if err := mgr.Start(); err != nil {
			log.Warn("statsview stopped", "err", err)
		}
	}()
	url := "http://" + addr + path
	log.Info("stats server available", "url", url)
	return url
}
