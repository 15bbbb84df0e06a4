// Package assemble turns a declaration and an index of described components
// into the final application manifest.
//
// Assembly is a single-threaded, in-memory transformation with four phases:
//
//  1. Classify determines each declared component's role: entry point,
//     top-level artifact, or absorbed sub-chart.
//  2. AllocateRefs pre-computes one local reference per declared component
//     (absorbed ones included) plus one for the application root, so every
//     cross-reference in the output resolves to the same value.
//  3. The per-kind builders produce component bodies, consulting the
//     description index and the reference table.
//  4. The dependency graph is derived from the declared graph, with absorbed
//     charts excluded from the root edge but keeping their own entries.
//
// A declared artifact without a matching description is skipped with a
// warning; edges referencing it keep its pre-allocated reference. That
// dangling reference is deliberate: the graph stays traceable even when a
// build job failed to deliver its description.
package assemble
