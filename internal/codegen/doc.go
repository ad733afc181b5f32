// Package codegen emits JavaScript for a parsed component.
//
// GenerateESM and GenerateCJS produce a module whose factory function
// takes options {initial, root} and returns {element, state, update,
// listeners, mount, destroy}. The component script is inlined into the
// factory with every assignment to a reactive variable routed through
// __invalidate, which runs the variable's update handler from
// GenerateDOMUpdate. Template interpolations are rendered as marked
// <span data-ack-id> nodes so handlers can reach them, and event
// attributes become data-ack-on-N markers.
//
// GenerateHydration adds hydrate(target), which rebuilds a component over
// server-rendered markup using the state embedded by StateScript.
//
// Generators only build strings. They never fail and do no I/O.
package codegen
