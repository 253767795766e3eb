// Package reconcile classifies canonicalized inventory records against the
// target store's current network set.
//
// Each record lands in exactly one of three partitions: new (absent from the
// store), existing (present, all shared attribute values match) or
// conflicting (present, at least one shared attribute value differs).
// Conflicting records carry the full list of differing attributes with both
// values so the caller can resolve them; the engine never auto-resolves.
//
// Reconcile is a pure function: it performs no I/O and has no side effects.
// Callers obtain the target network set through the ddi client and pass it
// in.
package reconcile
