// Package log provides the logging abstraction used across dropship.
//
// Library packages accept a Logger and default to NoopLogger, so embedding
// dropship never produces output unless the host asks for it. The CLI wires
// a ZerologAdapter:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//
// Any logging library can be plugged in by implementing Logger.
package log
