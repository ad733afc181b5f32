// Package core defines the shared language of the ack compiler.
//
// This package contains:
//   - The component model produced by parsing (ComponentModel, ScriptBlock,
//     TemplateBlock, StyleBlock and their parts)
//   - The closed template node sum type (ElementNode, TextNode,
//     InterpolationNode)
//   - Dependency graph node snapshots
//   - Compile options and results
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
