// Package tracing integrates OpenTelemetry tracing with the relay pipeline.
// All instrumentation is kept in a separate package so that applications
// which do not require tracing can exclude it from their build.
package tracing
