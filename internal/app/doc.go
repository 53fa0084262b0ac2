// Package app wires application dependencies for the CLI.
//
// Load layers configuration from defaults, the workspace file, a .env file,
// the environment and command-line overrides. NewWire builds the concrete
// stores, the cluster client and the wallet service from Config, and
// Program resolves a workspace program name to a signing election handle.
package app
