// Package database opens the optional gorm connection used for job
// persistence. MySQL is the default driver; sqlite is available for
// single-binary deployments.
package database
