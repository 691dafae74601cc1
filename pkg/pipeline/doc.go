// Package pipeline provides a pipeline for processing data.
//
// A pipeline is a series of stages connected by channels. A root step produces elements,
// steps transform them, a splitter duplicates them to several branches and sinks consume them.
// Every stage runs in its own goroutines, and steps can fan out to several workers.
//
// The pipeline stops on the first encountered error: the shared context is cancelled, every
// stage returns and Run reports the error decorated with the name of the failing stage.
//
// Options implementing model.PipelineOption are notified of every stage and every element,
// which is how measure and drawer collect durations and render the pipeline graph.
package pipeline
