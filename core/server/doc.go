// Package server provides the connection front end of a relay application: it
// binds a TCP port, accepts HTTP/1.x connections and hands every parsed request
// to an http.Handler on its own goroutine.
//
// # Lifecycle
//
// A Server moves through three states:
//
//	StateNotStarted -> StateListening -> StateStopped
//
// Listen binds the port and returns once the listener is ready; the accept loop
// runs in the background. Wait blocks until the loop ends. Stop drains in-flight
// requests within the shutdown timeout. A stopped server cannot be restarted.
//
//	srv := server.New(router, server.WithLogger(log))
//	if err := srv.Listen(8080); err != nil {
//		log.Error("listen failed", logger.Error(err))
//		os.Exit(1)
//	}
//	if err := srv.Wait(); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// Handlers that implement Freeze (such as core/router) are frozen by Listen, so
// handler registration must happen before the server starts.
//
// # errgroup Integration
//
// Run returns a function suited for errgroup that shuts down gracefully when the
// group context is canceled:
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, cfg.Port))
//	if err := g.Wait(); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// # Configuration
//
// Config reads SERVER_PORT and the SERVER_*_TIMEOUT variables through
// core/config. NewFromConfig turns it into options:
//
//	var cfg server.Config
//	config.MustLoad(&cfg)
//	srv := server.NewFromConfig(cfg, router)
package server
