// Package narrative assembles the bounded context handed to the text
// generation service.
//
// The assembler is a pure read-side projection over a session snapshot. It
// works backward from "now" in three layers (full current scene, recent
// scenes raw, older scene summaries) but emits the result in true
// chronological order so the package reads forward in time.
package narrative
