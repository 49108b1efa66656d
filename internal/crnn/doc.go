// Package crnn implements the sequence-recognition model and its greedy CTC
// decoder.
//
// The model is a compact CRNN: a convolutional feature extractor reduces the
// 32-row normalized input to a 4-row feature map, each column of which
// becomes one timestep; a two-layer bidirectional LSTM encodes the timestep
// sequence; a linear head projects every timestep to logits over the
// alphabet plus one reserved blank class. The decoder collapses the
// per-timestep arg-max stream into a character string and a calibrated
// confidence in [0,1].
//
// # Parameters
//
// Weights are loaded once from a gob-encoded Checkpoint whose per-layer
// shapes are validated against the fixed architecture. After loading, the
// parameter set is never mutated; concurrent Forward calls are safe because
// every call allocates its own intermediate buffers.
//
// Inference is fully deterministic: no dropout, no sampling, no randomness.
package crnn
