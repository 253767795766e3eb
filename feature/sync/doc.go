// Package sync applies reconciled inventory records to the target store.
//
// The orchestrator runs a sequential loop: for each record it looks the
// subnet up, updates the network's extensible attributes when present and
// creates it with a generated comment when absent. Failures are per item and
// never abort the run. An alternative bulk path hands all records to the
// client's batch-create endpoint.
package sync
