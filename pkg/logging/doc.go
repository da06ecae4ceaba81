// Package logging provides the structured logging used across dashtrack.
//
// It is built on Go's standard slog package. Every record carries a
// timestamp, a level, the subsystem that produced it and the message, plus
// an "error" attribute when one is attached.
//
// # Process-wide logging
//
// The process-wide handler is configured once at startup and used through
// the package-level functions:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Bootstrap", "Loaded configuration from %s", path)
//	logging.Warn("Store", "Container %s already running", name)
//	logging.Error("Bootstrap", err, "Failed to start orchestrator")
//
// # Named loggers
//
// Components that own a log stream acquire a *Logger at construction. A
// Logger is bound to one subsystem and either shares the process-wide
// handler (For), writes to an arbitrary writer (New) or appends to its own
// file (NewFileLogger):
//
//	log, err := logging.NewFileLogger("WorkerPool", "logs/dashtrack-threaded.log", logging.LevelInfo)
//	if err != nil {
//	    return err
//	}
//	defer log.Close()
//
//	log.With("worker", 3).Info("Claimed task %s", id)
//
// # Levels
//
// Failures are logged at ERROR, conditions that callers may choose to
// tolerate (a service found already running) at WARN and lifecycle
// milestones at INFO.
//
// # Thread Safety
//
// All functions and Logger methods are safe for concurrent use.
package logging
