// Package document provides the parsed representation of a client
// configuration file and the pure mutations applied to it.
//
// A [Document] is an insertion-ordered mapping of top-level JSON keys. The
// reserved [RegistrationKey] holds the server registration map; everything
// else is opaque and round-trips verbatim. Loading a file and saving it with
// no mutation produces a value-equal document.
//
// # Loading
//
// [Load] reads a file into a Document. A missing file yields a fresh empty
// document without touching the filesystem; invalid JSON and a wrongly-shaped
// registration map fail with distinct error kinds so the orchestrator can
// refuse to proceed:
//
//	doc, err := document.Load(path)
//	switch mcperrors.KindOf(err) {
//	case mcperrors.KindCorruptInput:   // parse error with location
//	case mcperrors.KindSchemaMismatch: // registration key is not a mapping
//	}
//
// # Mutating
//
// [AddEntry] and [RemoveEntry] are pure: they return a new document and leave
// their input untouched, which keeps concurrent operations on separate
// in-memory values safe. Both are idempotent.
//
// # Forward Compatibility
//
// Both [Document] and [Entry] preserve unknown JSON fields through
// marshal/unmarshal cycles, so configuration written by other tools survives
// any operation that does not target it.
package document
