// Package verify is the gate in front of every write: it loads a title file,
// patches it in memory, serializes it canonically and compares the SHA-1 of
// the result with the known-good baseline. Only a SUCCESS result means the
// patched bytes may be written back.
//
// Each check reports a single types.Result. The Inspect variants also hand
// back the raw and patched bytes so the installer never re-derives them.
package verify
