// Package inventory parses cloud-provider network exports into canonical
// network records.
//
// An export is a tabular file (CSV or XLSX) with a header row containing at
// minimum subnet, account and region columns, plus one tag column named TAG
// or TAGS. Tag cells may hold a JSON object, "key=value" pairs, or
// "key:value" pairs, delimited by commas or semicolons.
//
// Missing columns are reported together in a single ValidationError. Rows
// with an empty subnet are skipped; rows with an invalid subnet are excluded
// and reported per-row without failing the parse. Subnets are canonicalized
// to their masked CIDR form and must be IPv4 prefixes between /8 and /32
// outside reserved ranges.
//
// The Loader resolves export files either from local disk or from the
// object-storage bucket where uploads land.
package inventory
