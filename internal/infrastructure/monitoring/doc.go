/*
Package monitoring provides Prometheus metrics for the browser core.

# Overview

Metrics are registered on a caller-supplied prometheus.Registerer so that
several registries (for example one per test) can coexist in a process.
Every recording method is safe to call on a nil *Metrics, which lets
components treat metrics as optional.

# Metrics

  - Session registry: sessions gauge, added/removed counters, engine-session
    link/unlink counters, engine-session creation failures
  - Store: dispatched actions per type, reducer errors, reduce duration
  - Control API: request counters and latency, websocket connections

# Usage

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
*/
package monitoring
