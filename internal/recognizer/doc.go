// Package recognizer defines the backend-agnostic recognition contract and
// its implementations.
//
// Every backend satisfies the single capability interface
// ImageToTextRecognizer and produces the same Result shape, so callers can
// run any mix of backends and select between them without caring which
// engine produced what:
//
//   - Local: the in-process preprocessing pipeline plus CRNN model.
//   - Tesseract: the external OCR engine, fed the cleaned binary mask.
//   - OpenRouter: a remote vision-capable language model.
//
// ChooseBest implements the selection rule: highest confidence wins, ties
// broken by first-seen order.
package recognizer
