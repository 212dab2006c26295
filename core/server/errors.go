package server

import "errors"

var (
	// Configuration errors
	ErrInvalidPort = errors.New("port must be between 0 and 65535")
	ErrNoHandler   = errors.New("server handler is required")

	// Server lifecycle errors
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrServerStopped        = errors.New("server is stopped")
	ErrServerNotStarted     = errors.New("server is not started")
	ErrListen               = errors.New("failed to bind listener")
	ErrShutdown             = errors.New("HTTP shutdown error")
)
