// Package logger records the commands an interpreter session runs as
// newline delimited JSON events and summarizes them into reports.
package logger
