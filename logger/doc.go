// Package logger provides structured logging for streamcast using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("broadcast")
//	log.Info("broadcast created", logger.Fields(logger.FieldCapacity, 16))
package logger
