// Package approval implements the manual-approval gate of the relay
// pipeline. Tasks submitted with manualApproval set are parked here until an
// explicit approve or reject decision is recorded; only then may dispatch
// and outbound delivery proceed.
package approval
