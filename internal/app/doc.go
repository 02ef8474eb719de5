// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the operations the CLI exposes (render,
// validate, inspect, watch), decoupled from any specific entrypoint.
package app
