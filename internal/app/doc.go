// Package app contains the application lifecycle: it loads a model
// description, elaborates the top module, builds a simulator and then
// either runs a batch session, serves the simulator over socket.io, or
// drives a remote one. It is decoupled from any specific entrypoint like
// a CLI.
package app
