package router

import (
	"sync"

	"github.com/yshengliao/antoree/config"
	"github.com/yshengliao/antoree/pkg/httpclient"
)

var (
	defaultOnce    sync.Once
	defaultMu      sync.RWMutex
	defaultHandler *RouteHandler
)

// Default returns the process-wide handler, built on first use over a
// client pointed at the resolved base URL. Every caller shares its token
// state.
func Default() *RouteHandler {
	defaultOnce.Do(func() {
		cfg := httpclient.DefaultConfig()
		cfg.BaseURL = config.ResolveBaseURL("", "")
		h := New(httpclient.New(cfg))

		defaultMu.Lock()
		if defaultHandler == nil {
			defaultHandler = h
		}
		defaultMu.Unlock()
	})

	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultHandler
}

// SetDefault replaces the process-wide handler
func SetDefault(h *RouteHandler) {
	defaultOnce.Do(func() {})
	defaultMu.Lock()
	defaultHandler = h
	defaultMu.Unlock()
}
