// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// Subsystems take a named child logger:
//
//	logger := logging.NewDefault()
//	engine.SetLogger(logger.Component("engine"))
//	logger.Info("Server starting", zap.String("port", "3001"))
package logging
