// Package config loads and validates the environment-sourced configuration
// for the mailclerk service.
//
// All settings are required. Load fails with a single error that lists every
// missing variable, so a misconfigured deployment is rejected at startup
// instead of failing halfway through a request.
package config
