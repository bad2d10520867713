// Package relay implements a task relay pipeline between autonomous agent
// endpoints: inbound tasks are normalized and validated, optionally gated
// behind manual approval, dispatched by task type and - for forwarding
// types - delivered to their reply endpoint with one bounded retry and
// durable archival of the outcome.
//
// The pipeline is exposed through the Service façade:
//
//	svc := relay.New()
//	receipt, err := svc.Submit(ctx, raw)
//
// Storage, approval and delivery layers are pluggable; see the service
// sub-packages for the in-memory and filesystem implementations.
package relay
