// Package remote drives a simulator over socket.io.
//
// A Server owns exactly one Session, which owns one simulator. Clients send
// the events `reset`, `cycle {n}`, `eval`, `poke {path, value}` and
// `peek {paths}`; every request is answered with a `state` event carrying
// the session id, the cycle count and the requested values, or with an
// `error` event. Requests from all connections are serialised by the
// session, so the simulator only ever runs on one goroutine at a time.
//
// Client is the matching socket.io client used by `mtlsim -remote`.
package remote
