// Package output renders command results for genback.
//
// Every command builds a value and hands it to a Formatter picked by the
// global --output flag:
//
//   - table: human-readable columns (default)
//   - json:  indented JSON
//   - yaml:  YAML documents
//
// Values that know how to lay themselves out implement Tabler; anything
// else is rendered by reflection over exported fields. Fields tagged
// `table:"wide"` only appear with --wide, `table:"-"` never does.
package output
