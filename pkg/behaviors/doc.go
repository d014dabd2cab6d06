// Package behaviors reproduces the interactive page script on a parsed HTML
// tree: adding formset entries, toggling conditional sections, submit
// feedback and widget initialisation. Each behaviour attaches independently
// and is skipped when the elements it needs are absent.
package behaviors
