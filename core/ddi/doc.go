// Package ddi provides the client for the remote DDI store (Infoblox WAPI).
//
// It wraps the WAPI REST interface with a pooled, rate-limited, retrying HTTP
// client so callers never talk to the store directly. A single client
// instance (with its connection pool and throttle) is shared by all calls
// against one configured target.
//
// # Request discipline
//
// Every outbound call acquires a token from a shared token bucket (default
// 10 requests per second) before dispatch, blocking the caller until one is
// available. Responses are classified: 200 is parsed, 201 yields the assigned
// reference, 401 fails immediately and is never retried, and anything else
// (including transport failures) is retried up to 3 total attempts with a
// linearly increasing delay before a TransientError is surfaced.
//
// # Operations
//
//   - TestConnection: grid reachability probe.
//   - GetNetworkViews / GetExtensibleAttributes: metadata listings.
//   - GetNetworks / ListNetworksBatched: network listings, the latter
//     following the store's paging token until drained.
//   - GetNetworkBySubnet / CreateNetwork / UpdateNetwork: single-record ops.
//   - CreateNetworksBatch: bounded concurrent creates with an inter-batch
//     pause; per-item failures are aggregated, never fatal to siblings.
//
// # Usage
//
//	client, err := ddi.NewClient(cfg)
//	if err != nil { ... }
//	defer client.Close()
//	networks, err := client.ListNetworksBatched(ctx, "default")
package ddi
