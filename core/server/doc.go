// Package server runs an http.Handler with graceful shutdown.
//
// Run returns a func() error suited to errgroup: it serves until the context
// is cancelled, then shuts down within the configured timeout.
//
//	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, router))
//	return g.Wait()
package server
