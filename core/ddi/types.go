package ddi

// AttrValue is the extensible-attribute value envelope used by the WAPI.
// The store wraps every attribute value in an object so it can carry
// inheritance metadata alongside the value itself.
type AttrValue struct {
	Value any `json:"value"`
}

// Network is a network record as returned by the target store.
type Network struct {
	// Ref is the opaque object reference assigned by the store.
	// It is required for updates.
	Ref string `json:"_ref,omitempty"`

	// Network is the CIDR of the record, e.g. "10.0.0.0/24".
	Network string `json:"network"`

	// NetworkView is the namespace the record belongs to.
	NetworkView string `json:"network_view,omitempty"`

	// Comment is the free-form comment attached to the record.
	Comment string `json:"comment,omitempty"`

	// ExtAttrs holds the extensible attributes keyed by definition name.
	ExtAttrs map[string]AttrValue `json:"extattrs,omitempty"`
}

// NetworkView is a namespace partitioning the store's network records.
type NetworkView struct {
	Ref     string `json:"_ref,omitempty"`
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
}

// AttributeDef is an extensible attribute definition.
type AttributeDef struct {
	Ref     string `json:"_ref,omitempty"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Comment string `json:"comment,omitempty"`
}

// Attribute definition types accepted by the store.
const (
	AttrTypeString  = "STRING"
	AttrTypeInteger = "INTEGER"
	AttrTypeEnum    = "ENUM"
	AttrTypeEmail   = "EMAIL"
	AttrTypeURL     = "URL"
)

// NetworkCandidate is a network to be created through the batch path.
type NetworkCandidate struct {
	// Subnet is the CIDR to create.
	Subnet string
	// Comment is attached to the new record.
	Comment string
	// ExtAttrs are the mapped extensible attributes for the record.
	ExtAttrs map[string]AttrValue
}

// BatchResult aggregates the outcome of a batch create.
// Created + Failed always equals the number of candidates submitted.
type BatchResult struct {
	Created int      `json:"created"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// pageResponse is the paged listing shape returned when the store pages
// results. A non-empty NextPageID means more pages follow.
type pageResponse struct {
	Result     []Network `json:"result"`
	NextPageID string    `json:"next_page_id"`
}
