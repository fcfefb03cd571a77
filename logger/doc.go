// Package logger provides structured logging for gokv built on zerolog.
//
// Loggers are created from Config or with NewDefault, tagged per component
// with WithComponent, and take optional field maps on every call:
//
//	log := logger.NewDefault("kvscan").WithComponent("redis")
//	log.Debug("command dispatched", logger.Fields(logger.FieldCommand, "HSCAN", logger.FieldKey, "user:1"))
//
// Command and scan fields (FieldCommand, FieldKey, FieldCursor,
// FieldSequence) keep log lines from different scan sequences apart.
package logger
