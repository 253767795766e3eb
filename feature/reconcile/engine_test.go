package reconcile

import (
	"testing"

	"ddi-sync/core/ddi"
	"ddi-sync/feature/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(subnet string, mapped map[string]ddi.AttrValue) inventory.NetworkRecord {
	return inventory.NetworkRecord{
		Subnet:      subnet,
		Account:     "123",
		Region:      "us-east-1",
		Tags:        map[string]string{"Environment": "prod"},
		MappedAttrs: mapped,
	}
}

func TestReconcile_EmptyTargetStore(t *testing.T) {
	records := []inventory.NetworkRecord{
		record("10.0.0.0/24", map[string]ddi.AttrValue{"environment": {Value: "prod"}}),
	}

	result := Reconcile(records, nil)

	require.Len(t, result.New, 1)
	assert.Empty(t, result.Existing)
	assert.Empty(t, result.Conflicting)
	assert.Equal(t, "10.0.0.0/24", result.New[0].Record.Subnet)
	assert.Empty(t, result.New[0].TargetRef)
}

func TestReconcile_MatchingAttributes(t *testing.T) {
	records := []inventory.NetworkRecord{
		record("10.0.0.0/24", map[string]ddi.AttrValue{"environment": {Value: "prod"}}),
	}
	targets := []ddi.Network{
		{
			Ref:      "network/ZG5z:10.0.0.0",
			Network:  "10.0.0.0/24",
			ExtAttrs: map[string]ddi.AttrValue{"environment": {Value: "prod"}},
		},
	}

	result := Reconcile(records, targets)

	require.Len(t, result.Existing, 1)
	assert.Empty(t, result.New)
	assert.Empty(t, result.Conflicting)
	assert.Equal(t, "network/ZG5z:10.0.0.0", result.Existing[0].TargetRef)
}

func TestReconcile_ConflictingAttributes(t *testing.T) {
	records := []inventory.NetworkRecord{
		record("10.0.0.0/24", map[string]ddi.AttrValue{"environment": {Value: "prod"}}),
	}
	targets := []ddi.Network{
		{
			Ref:      "network/ZG5z:10.0.0.0",
			Network:  "10.0.0.0/24",
			ExtAttrs: map[string]ddi.AttrValue{"environment": {Value: "staging"}},
		},
	}

	result := Reconcile(records, targets)

	require.Len(t, result.Conflicting, 1)
	assert.Empty(t, result.New)
	assert.Empty(t, result.Existing)

	item := result.Conflicting[0]
	assert.Equal(t, "network/ZG5z:10.0.0.0", item.TargetRef)
	require.Len(t, item.Conflicts, 1)
	assert.Equal(t, Conflict{
		Attribute:   "environment",
		SourceValue: "prod",
		TargetValue: "staging",
	}, item.Conflicts[0])
}

func TestReconcile_PartitionCompleteness(t *testing.T) {
	records := []inventory.NetworkRecord{
		record("10.0.0.0/24", map[string]ddi.AttrValue{"environment": {Value: "prod"}}),
		record("10.0.1.0/24", map[string]ddi.AttrValue{"environment": {Value: "prod"}}),
		record("10.0.2.0/24", map[string]ddi.AttrValue{"environment": {Value: "prod"}}),
		record("10.0.3.0/24", nil),
	}
	targets := []ddi.Network{
		{Network: "10.0.1.0/24", ExtAttrs: map[string]ddi.AttrValue{"environment": {Value: "prod"}}},
		{Network: "10.0.2.0/24", ExtAttrs: map[string]ddi.AttrValue{"environment": {Value: "dev"}}},
	}

	result := Reconcile(records, targets)

	// |new| + |existing| + |conflicting| == N
	assert.Equal(t, len(records), result.Total())

	// Pairwise disjoint by subnet
	seen := map[string]int{}
	for _, item := range result.New {
		seen[item.Record.Subnet]++
	}
	for _, item := range result.Existing {
		seen[item.Record.Subnet]++
	}
	for _, item := range result.Conflicting {
		seen[item.Record.Subnet]++
	}
	for subnet, count := range seen {
		assert.Equal(t, 1, count, "subnet %s classified more than once", subnet)
	}
}

func TestReconcile_DuplicateTargetsLastWriteWins(t *testing.T) {
	records := []inventory.NetworkRecord{
		record("10.0.0.0/24", map[string]ddi.AttrValue{"environment": {Value: "prod"}}),
	}
	targets := []ddi.Network{
		{Ref: "network/first", Network: "10.0.0.0/24", ExtAttrs: map[string]ddi.AttrValue{"environment": {Value: "staging"}}},
		{Ref: "network/second", Network: "10.0.0.0/24", ExtAttrs: map[string]ddi.AttrValue{"environment": {Value: "prod"}}},
	}

	result := Reconcile(records, targets)

	require.Len(t, result.Existing, 1)
	assert.Equal(t, "network/second", result.Existing[0].TargetRef)
}

func TestReconcile_NumericValuesCompareAsStrings(t *testing.T) {
	records := []inventory.NetworkRecord{
		record("10.0.0.0/24", map[string]ddi.AttrValue{"cost_center": {Value: "10"}}),
	}
	targets := []ddi.Network{
		{Network: "10.0.0.0/24", ExtAttrs: map[string]ddi.AttrValue{"cost_center": {Value: float64(10)}}},
	}

	result := Reconcile(records, targets)

	// Integer 10 and string "10" compare equal as strings
	assert.Len(t, result.Existing, 1)
	assert.Empty(t, result.Conflicting)
}

func TestReconcile_UnsharedAttributesNeverConflict(t *testing.T) {
	records := []inventory.NetworkRecord{
		record("10.0.0.0/24", map[string]ddi.AttrValue{"owner": {Value: "neteng"}}),
	}
	targets := []ddi.Network{
		{Network: "10.0.0.0/24", ExtAttrs: map[string]ddi.AttrValue{"environment": {Value: "prod"}}},
	}

	result := Reconcile(records, targets)
	assert.Len(t, result.Existing, 1)
}

func TestReconcile_UnmappedRecordsCompareByTagKeys(t *testing.T) {
	records := []inventory.NetworkRecord{
		// No mapper has run; tags are compared by their raw keys
		{Subnet: "10.0.0.0/24", Tags: map[string]string{"Environment": "prod"}},
	}
	targets := []ddi.Network{
		{Network: "10.0.0.0/24", ExtAttrs: map[string]ddi.AttrValue{"Environment": {Value: "staging"}}},
	}

	result := Reconcile(records, targets)

	require.Len(t, result.Conflicting, 1)
	assert.Equal(t, "prod", result.Conflicting[0].Conflicts[0].SourceValue)
}

func TestReconcile_MultipleConflictsSorted(t *testing.T) {
	records := []inventory.NetworkRecord{
		record("10.0.0.0/24", map[string]ddi.AttrValue{
			"owner":       {Value: "neteng"},
			"environment": {Value: "prod"},
		}),
	}
	targets := []ddi.Network{
		{Network: "10.0.0.0/24", ExtAttrs: map[string]ddi.AttrValue{
			"owner":       {Value: "dba"},
			"environment": {Value: "staging"},
		}},
	}

	result := Reconcile(records, targets)

	require.Len(t, result.Conflicting, 1)
	conflicts := result.Conflicting[0].Conflicts
	require.Len(t, conflicts, 2)
	assert.Equal(t, "environment", conflicts[0].Attribute)
	assert.Equal(t, "owner", conflicts[1].Attribute)
}
