// Package service defines a lifecycle contract for starting and stopping
// long-lived components. Its only implementation in this module is
// controller.AsService; the commands under cmd/ do not use it.
package service

// Service defines the lifecycle interface for controller subsystems.
// Services manage long-lived resources: the timer service's countdown
// array, the sampler's debounce channels, a terminal dashboard's screen.
//
// Lifecycle:
//  1. Construction (via factory)
//  2. Init(args...) - implicit configuration (e.g. initial FSM state, config file path)
//  3. Start() - launch background goroutines (dashboard redraw ticker, audio backend)
//  4. [runtime operation]
//  5. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init before this one
	// Return nil or empty slice if no dependencies
	Dependencies() []string

	// Init configures the service from optional args
	// Args are service-specific (initial FSM state, config file path)
	Init(args ...any) error

	// Start begins service operation (launches goroutines if any)
	// Called after all services have initialized
	Start() error

	// Stop halts service operation and releases resources
	// Must be idempotent - safe to call multiple times
	Stop() error
}