// Package preprocess implements the deterministic image conditioning pipeline
// that turns a raw CAPTCHA image into a normalized fixed-height tensor.
//
// The pipeline is a chain of pure transforms, each consuming the previous
// stage's output and returning a freshly allocated buffer:
//
//	raw image -> Grayscale -> Denoise -> Binarize -> Morphology -> Deskew
//	          -> ResizeAndPad -> Normalize
//
// Run executes the full chain and returns every intermediate artifact for
// inspection, plus diagnostic character bounding boxes derived from the
// deskewed mask. The boxes are never consumed by the recognizer; they exist
// purely for debugging.
//
// # Buffer Ownership
//
// No stage mutates or retains its input. Two invocations of the pipeline on
// the same image produce byte-identical buffers, which is relied on by tests
// and makes concurrent calls safe as long as each call owns its artifacts.
//
// # Binary Mask Convention
//
// Binarization inverts the image so text pixels are foreground (255) and the
// background is 0. All later mask stages keep that convention.
//
// # Error Handling
//
// Failures carry the identity of the failing stage via StageError. A
// zero-width or zero-height buffer reaching the resize stage is a fatal
// DimensionError for that image; no partial artifacts are returned.
package preprocess
