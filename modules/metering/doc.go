// Package metering composes the quota engine into an HTTP surface: a chi
// router exposing per-tenant usage reads, meant to back dashboards and
// upgrade prompts. Enforcement itself stays in the calling layer via the
// quota middleware; this module is read-only.
package metering
