// Package noderank probes a pool of candidate endpoints, keeps the ones
// that answer quickly and consistently, and ranks them so a caller can
// pick the best-performing node.
//
// noderank provides:
//   - Bounded-time connectivity probes with latency classification
//   - All-or-nothing stability testing over repeated attempts
//   - Latency and consistency scoring with deterministic ranking
//   - A process-lifetime registry of last-known node health
//   - Optional NATS result publishing and Prometheus metrics
//
// # Usage
//
//	registry := noderank.NewRegistry()
//	checker, err := noderank.NewChecker(noderank.Config{Pool: "mirrors"}, registry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := checker.CheckAll(ctx, nodes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, sn := range report.Healthy {
//	    fmt.Println(sn.ID, sn.Score)
//	}
//
//	// Later, without re-probing:
//	best, ok := registry.BestKnownNode()
package noderank
