package logger

// Printf-style helpers used by main and the migrate command.

// Info logs an informational message
func Info(format string, args ...interface{}) {
	zlog.Info().Msgf(format, args...)
}

// Warn logs a warning
func Warn(format string, args ...interface{}) {
	zlog.Warn().Msgf(format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	zlog.Error().Msgf(format, args...)
}

// Fatal logs and exits the process
func Fatal(format string, args ...interface{}) {
	zlog.Fatal().Msgf(format, args...)
}
