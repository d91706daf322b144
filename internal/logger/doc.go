// Package logger wraps zap with a global sugared logger and context helpers
// (ToContext/FromContext/WithName/WithKV/WithFields).
//
// Services receive a context and log through it, so request- and run-scoped
// fields travel with the call chain. Output goes to stdout in console or JSON
// format and optionally to a rolling file.
package logger
