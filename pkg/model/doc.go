// Package model defines the form definitions consumed by renderers and the
// formset tooling: top-level fields, conditional sections driven by a control
// field, repeatable formsets and the submit chrome. Definitions are plain data
// and can be decoded from YAML.
package model
