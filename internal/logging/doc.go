// Package logging builds the process-wide zerolog logger from config.
package logging
