// Package mapping suggests correspondences between cloud tag keys and
// target-store extensible attribute names.
//
// Keys are normalized (lowercase, separator runs collapsed to underscores)
// and scored against each candidate with normalized edit similarity, raised
// by fixed floors for substring containment (0.85), shared three-character
// prefixes (0.70) and known synonym-group membership (0.95). Candidates
// below the threshold (default 0.8) are discarded; at most three are
// suggested per key, ordered by descending score with ties broken by
// ascending target key for determinism.
//
// Apply rewrites record tags into the store's attribute-value envelope using
// a chosen mapping table; unmapped tags are dropped.
package mapping
