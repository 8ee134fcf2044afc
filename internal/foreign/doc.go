// Package foreign wraps opaque model implementations (hand-written Go
// models, or adapters to externally compiled ones) behind an ordinary
// model.Module.
//
// The wrapped module declares the ports listed in a Manifest. Before a
// simulator is built, a verify hook checks the manifest and the
// implementation's own port list against the embedded CUE schema and
// against each other, so a foreign model whose port contract drifted from
// its wrapper fails construction instead of misbehaving at run time.
package foreign
