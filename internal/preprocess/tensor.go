package preprocess

// Tensor is a dense float32 array in channel-major (C, H, W) layout, the
// normalized input of the sequence model. Values are in [0,1]; the pipeline
// produces tensors with Channels == 1, Height == 32, and Width a multiple
// of 4 no smaller than 64.
type Tensor struct {
	Channels int
	Height   int
	Width    int
	Data     []float32
}

// At returns the value at channel c, row y, column x. No bounds checking is
// performed.
func (t *Tensor) At(c, y, x int) float32 {
	return t.Data[(c*t.Height+y)*t.Width+x]
}
