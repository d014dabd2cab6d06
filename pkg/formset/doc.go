// Package formset duplicates and renumbers repeatable form entries ("formsets")
// on parsed HTML trees.
//
// Field identifiers follow the `prefix-index-fieldname` convention used by
// Django-style formsets (for example `outcomes-0-name`, or `id_outcomes-0-name`
// for element ids). A Replicator clones the first entry block inside a
// container, clears its values, rewrites every identifier, name and label
// reference carrying the template index to the next free index, appends the
// clone and bumps the TOTAL_FORMS counter. The number of entry blocks present
// in the container is authoritative; the stored counter is only compared
// against it so callers can detect drift.
//
// The package works on golang.org/x/net/html nodes so the routine can run
// server-side (HTMX style fragments, CLI tooling) and in tests without a
// browser.
package formset
