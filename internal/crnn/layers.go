package crnn

import "math"

// featureMap is a dense float32 volume in channel-major (C, H, W) layout,
// the working representation between convolutional layers.
type featureMap struct {
	c, h, w int
	data    []float32
}

func newFeatureMap(c, h, w int) *featureMap {
	return &featureMap{c: c, h: h, w: w, data: make([]float32, c*h*w)}
}

func (f *featureMap) at(c, y, x int) float32 {
	return f.data[(c*f.h+y)*f.w+x]
}

func (f *featureMap) set(c, y, x int, v float32) {
	f.data[(c*f.h+y)*f.w+x] = v
}

// conv3x3ReLU applies a 3x3 convolution with padding 1 followed by ReLU.
// Weights are laid out [out][in][ky][kx]; out-of-bounds taps read as zero.
func conv3x3ReLU(in *featureMap, weight, bias []float32, outC int) *featureMap {
	out := newFeatureMap(outC, in.h, in.w)

	for oc := 0; oc < outC; oc++ {
		for y := 0; y < in.h; y++ {
			for x := 0; x < in.w; x++ {
				sum := bias[oc]
				for ic := 0; ic < in.c; ic++ {
					wBase := ((oc*in.c + ic) * 3) * 3
					for ky := -1; ky <= 1; ky++ {
						iy := y + ky
						if iy < 0 || iy >= in.h {
							continue
						}
						for kx := -1; kx <= 1; kx++ {
							ix := x + kx
							if ix < 0 || ix >= in.w {
								continue
							}
							sum += weight[wBase+(ky+1)*3+(kx+1)] * in.at(ic, iy, ix)
						}
					}
				}
				if sum < 0 {
					sum = 0
				}
				out.set(oc, y, x, sum)
			}
		}
	}

	return out
}

// maxPool downsamples by taking the maximum over non-overlapping kh x kw
// windows (stride equals the kernel).
func maxPool(in *featureMap, kh, kw int) *featureMap {
	out := newFeatureMap(in.c, in.h/kh, in.w/kw)

	for c := 0; c < in.c; c++ {
		for y := 0; y < out.h; y++ {
			for x := 0; x < out.w; x++ {
				best := float32(math.Inf(-1))
				for dy := 0; dy < kh; dy++ {
					for dx := 0; dx < kw; dx++ {
						if v := in.at(c, y*kh+dy, x*kw+dx); v > best {
							best = v
						}
					}
				}
				out.set(c, y, x, best)
			}
		}
	}

	return out
}

// runLSTM runs a single-direction LSTM over the sequence, consuming it in
// reverse when reverse is set, and returns the hidden state at every
// timestep in original sequence order.
//
// Gate layout follows the i, f, g, o convention: the stacked weight matrices
// hold input, forget, cell, and output gate rows in that order.
func runLSTM(seq [][]float32, p *LSTMParams, reverse bool) [][]float32 {
	T := len(seq)
	H := p.Hidden

	out := make([][]float32, T)
	hState := make([]float32, H)
	cState := make([]float32, H)
	gates := make([]float32, 4*H)

	for step := 0; step < T; step++ {
		t := step
		if reverse {
			t = T - 1 - step
		}
		x := seq[t]

		for g := 0; g < 4*H; g++ {
			sum := p.BiasIH[g] + p.BiasHH[g]
			wi := g * p.Input
			for k := 0; k < p.Input; k++ {
				sum += p.WeightIH[wi+k] * x[k]
			}
			wh := g * H
			for k := 0; k < H; k++ {
				sum += p.WeightHH[wh+k] * hState[k]
			}
			gates[g] = sum
		}

		for k := 0; k < H; k++ {
			i := sigmoid(gates[k])
			f := sigmoid(gates[H+k])
			g := float32(math.Tanh(float64(gates[2*H+k])))
			o := sigmoid(gates[3*H+k])

			cState[k] = f*cState[k] + i*g
			hState[k] = o * float32(math.Tanh(float64(cState[k])))
		}

		h := make([]float32, H)
		copy(h, hState)
		out[t] = h
	}

	return out
}

// biLSTM runs the forward and backward directions and concatenates their
// hidden states per timestep.
func biLSTM(seq [][]float32, layer *BiLSTMParams) [][]float32 {
	fwd := runLSTM(seq, &layer.Forward, false)
	bwd := runLSTM(seq, &layer.Backward, true)

	H := layer.Forward.Hidden
	out := make([][]float32, len(seq))
	for t := range seq {
		v := make([]float32, 2*H)
		copy(v[:H], fwd[t])
		copy(v[H:], bwd[t])
		out[t] = v
	}
	return out
}

// linear applies y = Wx + b with W laid out [out][in].
func linear(x []float32, p *LinearParams) []float32 {
	out := make([]float32, p.Out)
	for o := 0; o < p.Out; o++ {
		sum := p.Bias[o]
		base := o * p.In
		for k := 0; k < p.In; k++ {
			sum += p.Weight[base+k] * x[k]
		}
		out[o] = sum
	}
	return out
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}
