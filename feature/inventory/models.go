package inventory

import (
	"fmt"
	"strings"

	"ddi-sync/core/ddi"
)

// NetworkRecord is one canonicalized row of a cloud-provider network export.
// Records are immutable after parsing, except for the mapped-attribute
// annotation added by the attribute mapper.
type NetworkRecord struct {
	// Subnet is the canonical CIDR, e.g. "10.0.0.0/24".
	Subnet string `json:"subnet"`

	// Account is the cloud account the subnet belongs to.
	Account string `json:"account"`

	// Region is the cloud region the subnet lives in.
	Region string `json:"region"`

	// Tags holds the parsed provider tags, keys unique.
	Tags map[string]string `json:"tags"`

	// RawFields is the full original row, kept as an opaque passthrough.
	RawFields map[string]string `json:"raw_fields"`

	// MappedAttrs holds the tags rewritten into target-store attribute form.
	// Populated by mapping.Apply; empty until then.
	MappedAttrs map[string]ddi.AttrValue `json:"mapped_extattrs,omitempty"`
}

// Comment derives the target-store comment for a record.
func (r NetworkRecord) Comment() string {
	return fmt.Sprintf("AWS Account: %s, Region: %s", r.Account, r.Region)
}

// ValidationError reports a malformed inventory file. It carries every
// detected problem, not just the first, so the caller can fix the file in
// one pass. It is never retried.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid inventory file: " + strings.Join(e.Problems, "; ")
}

// ParseResult holds the parsed records plus any rows that were excluded
// because their subnet failed validation.
type ParseResult struct {
	// Records are the parsed rows, in input order.
	Records []NetworkRecord

	// Skipped lists row-scoped problems (invalid subnets). A skipped row
	// never aborts the parse.
	Skipped []string
}
