package reconcile

import (
	"fmt"
	"sort"
	"strconv"

	"ddi-sync/core/ddi"
	"ddi-sync/feature/inventory"
)

// Reconcile classifies each source record against the target store's network
// set for one view. It is a pure function of its two inputs.
//
// The target set is indexed by CIDR; duplicate CIDRs are a target-store
// inconsistency and resolve last-write-wins. Attribute comparison is by
// string equality after unwrapping the store's value envelope; no type
// coercion is attempted beyond stringifying, so an integer 10 and the string
// "10" compare equal.
func Reconcile(records []inventory.NetworkRecord, targetNetworks []ddi.Network) *Result {
	lookup := make(map[string]ddi.Network, len(targetNetworks))
	for _, network := range targetNetworks {
		lookup[network.Network] = network
	}

	result := &Result{}
	for _, record := range records {
		target, found := lookup[record.Subnet]
		if !found {
			result.New = append(result.New, Item{Record: record})
			continue
		}

		item := Item{Record: record, TargetRef: target.Ref}
		conflicts := findConflicts(record, target.ExtAttrs)
		if len(conflicts) > 0 {
			item.Conflicts = conflicts
			result.Conflicting = append(result.Conflicting, item)
		} else {
			result.Existing = append(result.Existing, item)
		}
	}

	return result
}

// findConflicts compares the record's attributes against the target's
// extensible attributes. Only keys present on both sides can conflict.
// Records that have not been through the attribute mapper are compared by
// their raw tag keys.
func findConflicts(record inventory.NetworkRecord, extattrs map[string]ddi.AttrValue) []Conflict {
	source := make(map[string]string)
	if record.MappedAttrs != nil {
		for key, value := range record.MappedAttrs {
			source[key] = attrString(value.Value)
		}
	} else {
		for key, value := range record.Tags {
			source[key] = value
		}
	}

	var conflicts []Conflict
	for key, sourceValue := range source {
		targetValue, shared := extattrs[key]
		if !shared {
			continue
		}
		targetStr := attrString(targetValue.Value)
		if sourceValue != targetStr {
			conflicts = append(conflicts, Conflict{
				Attribute:   key,
				SourceValue: sourceValue,
				TargetValue: targetStr,
			})
		}
	}

	// Map iteration order is random; sort for stable output
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Attribute < conflicts[j].Attribute
	})

	return conflicts
}

// attrString renders an attribute value for comparison. Integral numbers
// render without a fraction so a numeric 10 equals the string "10".
func attrString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", value)
	}
}
