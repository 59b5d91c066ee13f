// Package alluvial implements the data-reshaping core of the engine:
// classifying tables as alluvia or lodes form, converting between the two,
// and distilling per-entity covariates when a conversion must collapse rows.
//
// # Forms
//
// Alluvial data has two equivalent tabular representations:
//
//   - Alluvia form (wide): one row per entity, one column per axis. The
//     cell at (entity, axis) holds the entity's category at that stage.
//   - Lodes form (long): one row per (entity, axis) pair, with dedicated
//     key (axis indicator), value (category), and id (entity) columns.
//
// [Detect] classifies a table as one of the two forms (or neither), and
// [Classify] wraps the result in a tagged [Dataset] so downstream stages
// never re-inspect the shape. [ToLodes] and [ToAlluvia] convert between the
// forms; absent distillation the round trip is lossless on category values
// and weights.
//
// # Distillation
//
// Converting lodes to alluvia collapses the per-axis rows of each entity
// into one row. Covariate columns that are supposed to be constant per
// entity may disagree across axes; a [DistillFunc] resolves each group of
// conflicting values to a single representative. Without a policy the
// conversion fails with AMBIGUOUS_DISTILLATION rather than losing
// information silently.
//
// All operations are pure: they never mutate their input table.
package alluvial
