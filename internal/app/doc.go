// Package app provides application bootstrap and the command implementations
// for dashtrack.
//
// # Bootstrap
//
// NewApplication performs the initialization sequence:
//
//  1. Loads config.yaml from the configured directory (default
//     ~/.config/dashtrack) on top of the built-in defaults
//  2. Applies command line overrides (--strict, --workers)
//  3. Configures logging to stdout and, when logging.file is set, to the
//     application log file
//  4. Builds the container runtime, the store service and the optional
//     chromedriver resolver
//
// Nothing is started during bootstrap.
//
// # Run
//
// Application.Run holds the store through orchestrator.With, so the store is
// stopped on every exit path including interrupts. Inside the scope it saves
// and reloads a sample order and, with an import file, saves every order in
// it through a worker pool. Each worker owns a private store client and,
// when browser automation is enabled, a chromedriver descriptor.
//
// # Status and Stop
//
// Application.Status and Application.StopStore attach to an existing store
// container without starting one.
package app
