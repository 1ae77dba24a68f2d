// Package metric records rotation metrics for node_exporter's textfile
// collector.
//
// genback is a batch job, so nothing is served over HTTP. After a run the
// registry is written atomically to a *.prom file:
//
//	reg := metric.NewRegistry()
//	reg.RotationSucceeded("daily", "recycle", 3, took)
//	_ = reg.WriteTextfile("/var/lib/node_exporter/genback.prom")
package metric
