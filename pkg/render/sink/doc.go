// Package sink serializes computed alluvial geometry into output artifacts.
//
// Sinks are the rendering collaborators of the layout engine: they consume
// the plain geometric records (x, y, ymin, ymax, weight, group) emitted by
// pkg/layout and are responsible for all drawing. The layout core never
// depends on a sink.
//
//   - [RenderSVG] draws stratum rectangles per axis and cubic-Bézier flow
//     ribbons per link.
//   - [RenderJSON] emits the records as JSON for external renderers.
package sink
