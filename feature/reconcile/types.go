package reconcile

import "ddi-sync/feature/inventory"

// Conflict describes one attribute whose value differs between the source
// record and the target store.
type Conflict struct {
	// Attribute is the target-store attribute name.
	Attribute string `json:"attribute"`

	// SourceValue is the value carried by the inventory record.
	SourceValue string `json:"source_value"`

	// TargetValue is the value currently held by the target store.
	TargetValue string `json:"target_value"`
}

// Item is a classified record, decorated with the target reference and the
// conflicting attributes where applicable.
type Item struct {
	// Record is the source inventory record.
	Record inventory.NetworkRecord `json:"record"`

	// TargetRef is the store reference of the matching network.
	// Empty for new records.
	TargetRef string `json:"target_ref,omitempty"`

	// Conflicts lists the differing attributes. Only set for conflicting
	// records.
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

// Result partitions the input records into three disjoint sequences.
// Every input record appears in exactly one of them.
type Result struct {
	// New are records absent from the target store.
	New []Item `json:"new"`

	// Existing are records present with matching attribute values.
	Existing []Item `json:"existing"`

	// Conflicting are records present with at least one differing
	// attribute value.
	Conflicting []Item `json:"conflicting"`
}

// Total returns the number of classified records.
func (r *Result) Total() int {
	return len(r.New) + len(r.Existing) + len(r.Conflicting)
}
