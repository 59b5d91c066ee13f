// Package layout computes the geometry of alluvial diagrams: stratum boxes
// per axis, lode positions within strata, and flow ribbons between adjacent
// axes.
//
// # Model
//
// Each axis (an ordered stage) stacks its categories as strata: contiguous
// vertical intervals whose heights equal the summed entity weights. A lode
// is one entity's slice of a stratum; a flow connects an entity's lodes at
// two adjacent axes.
//
// # Operations
//
//   - [Strata] computes the stratum boxes of every axis.
//   - [ComputeLodes] positions every (entity, axis) lode: a traversal order
//     per axis is chosen by a [Guidance] strategy (or an explicit order
//     matrix), then a continuous running weight sum down the axis yields
//     [ymin, ymax) extents. The sort groups entities by stratum first, so
//     lodes of one stratum come out contiguous without any per-stratum
//     reset.
//   - [ComputeFlows] emits two half-records per entity per adjacent axis
//     pair, sharing a group id that appears exactly twice. Flows may be
//     aggregated (identical paths merged, weights summed) and ordered
//     within each link by the tri-state Decreasing rule.
//
// All operations are pure and deterministic: identical input row order and
// options yield bit-identical output. The emitted records carry the fixed
// fields x, y, ymin, ymax, weight, and group consumed by the rendering
// collaborators in pkg/render.
package layout
