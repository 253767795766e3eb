// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and is shared by the CLI and the job runner.
//
// # Job Awareness
//
// The WithJob helper attaches a job_id field to the logger so every log entry
// emitted while a sync job runs can be correlated with the job status record.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Client connected")
//
//	// In a job runner:
//	l := logger.WithJob(log, job.ID)
//	l.Error("Item failed", zap.Error(err))
package logger
