// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle that wires the scene
// loaders, the frame loop, the view-update sinks, the Socket.IO bridge and
// the health server together, decoupled from any specific entrypoint.
package app
