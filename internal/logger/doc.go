// Package logger provides logging facilities for the gitalong CLI.
//
// This package implements a simple, structured logging system with different
// log levels and the ability to write logs to both the console and a file
// simultaneously. The logging interface itself (Logger) lives in
// internal/common so the Repository Core can depend on it without pulling in
// this package's file-handling and stdout/stderr concerns; this package
// supplies only the standard implementation.
//
// # Core Components
//
// - Logger: an alias for common.Logger, the interface used throughout the application
// - DefaultLogger: Standard implementation that writes to console and/or file
//
// # Features
//
// - Multiple log levels (Info, Warning, Error, Success)
// - Emoji-prefixed console output for user-facing messages
// - User-facing vs. debug-only messages
// - Conditional logging based on verbosity settings
//
// # Log Levels
//
// The logger supports the following distinct message types:
//
// - Info: General information messages
// - InfoToUser: Important information to display to the user
// - Warning: Warning messages for potential issues
// - WarningToUser: Important warnings to display to the user
// - Error: Error messages for failures
// - Success: Success messages for completed operations
// - StatusMessage: Current status updates
//
// # Usage
//
// Basic usage pattern:
//
//	// Create a new logger
//	logger := logger.New(true, "/path/to/log.file", true)
//
//	// Log different types of messages
//	logger.Info("Debug-only information: %v", details)
//	logger.InfoToUser("Important information: %v", userInfo)
//	logger.Warning("Potential issue: %v", warning)
//	logger.Error("An error occurred: %v", err)
//	logger.Success("Operation completed: %v", result)
//
// # Usage With Dependency Injection
//
// The Logger interface is typically injected into components that need logging capabilities:
//
//	type MyComponent struct {
//	    logger logger.Logger
//	    // other fields
//	}
//
//	func NewMyComponent(logger logger.Logger) *MyComponent {
//	    return &MyComponent{
//	        logger: logger,
//	    }
//	}
//
//	func (c *MyComponent) DoSomething() error {
//	    // Internal logging (debug information)
//	    c.logger.Info("Starting operation")
//
//	    // User-facing information
//	    c.logger.InfoToUser("Processing your request")
//
//	    // Success message shown to the user
//	    c.logger.Success("Operation completed successfully")
//
//	    return nil
//	}
//
// # Console Output
//
// Console output is prefixed with an emoji to distinguish different message
// types: ℹ️  for InfoToUser, ⚠️  for Warning/WarningToUser, ❌ for Error,
// ✅ for Success. Messages directed specifically to users (InfoToUser,
// WarningToUser) are always displayed regardless of verbosity settings.
//
// # File Logging
//
// When logging is enabled and the log file can be opened, every message
// except StatusMessage (regardless of verbosity settings) is written to it
// via slog's text handler, timestamped. A disabled logger writes no file.
//
// # Resource Management
//
// DefaultLogger (not the Logger interface) provides a Close method that
// should be called before application termination to ensure all buffered
// logs are flushed to disk:
//
//	defer logger.Close()
//
// # Thread Safety
//
// The DefaultLogger implementation is safe for concurrent use by multiple
// goroutines. All logging methods can be called from different goroutines
// without additional synchronization.
package logger
