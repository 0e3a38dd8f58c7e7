// Package native binds libfasttext in-process through a small C shim.
//
// Build with `-tags=fasttext` and libfasttext (v0.9.2 headers under
// <fasttext/...>) available to the C++ toolchain. Without the tag, New
// returns a dependency-unavailable error and the cli engine should be used.
//
// The shim exposes supervised/skipgram/cbow training only; other fastText
// commands require the cli engine.
package native
