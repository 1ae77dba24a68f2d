// Package shutdown removes half-built snapshots when the process is
// interrupted.
//
// A Guard tracks at most one provisional directory. On SIGINT, SIGTERM,
// SIGHUP or SIGQUIT it removes that directory, runs the registered hooks
// in reverse order and exits with 128 plus the signal number:
//
//	g := shutdown.NewGuard()
//	g.Start()
//	defer g.Stop()
//	g.Track(staging)
//	...
//	g.Clear()
package shutdown
