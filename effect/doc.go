// Package effect is a small host-neutral model of an image effect plugin
// standard: descriptors, typed parameters, clips, host images and the
// describe / describe-in-context / create-instance / render entry points.
//
// # Lifecycle
//
// A host loads a [Factory], asks it to [Factory.Describe] itself into a
// [Descriptor], then calls [Factory.DescribeInContext] once a context has
// been chosen. Parameters and clips defined on the descriptor are turned
// into a [ParamSet] and [Clip] values and handed to the plugin through a
// [Handle] in [Factory.CreateInstance]. The returned [Instance] is asked for
// its region of definition and rendered on demand.
//
// # Coordinates and buffers
//
// Host images follow the usual compositing convention: the y axis points up
// and row 0 of a buffer is the bottom row of its bounds. Libraries that draw
// top-down must flip on the way in and out.
//
// # Errors
//
// Failures that the user should see are reported through
// [Handle.Fail], which records a persistent message and returns a
// [*StatusError] carrying the status code the host expects.
package effect
