package preprocess

import (
	"image"
	"sort"
)

// Box is an axis-aligned character candidate rectangle in mask coordinates.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Segment derives candidate character bounding boxes from a binary mask by
// grouping 8-connected foreground pixels into components and taking each
// component's bounding rectangle.
//
// Boxes shorter than 0.2x the mask height or narrower than 0.01x the mask
// width are discarded as noise speckles or segmentation-mark artifacts. The
// survivors are returned sorted ascending by x-coordinate.
//
// The result is purely diagnostic: the sequence model never consumes it, and
// zero surviving boxes is a valid outcome, not an error.
func Segment(mask *image.Gray) []Box {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()

	visited := make([]bool, w*h)
	boxes := make([]Box, 0)

	minH := 0.2 * float64(h)
	minW := 0.01 * float64(w)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited[y*w+x] || mask.Pix[y*mask.Stride+x] == 0 {
				continue
			}

			box := traceComponent(mask, visited, x, y, w, h)
			if float64(box.H) < minH || float64(box.W) < minW {
				continue
			}
			boxes = append(boxes, box)
		}
	}

	sort.Slice(boxes, func(i, j int) bool { return boxes[i].X < boxes[j].X })
	return boxes
}

// traceComponent flood-fills one connected component starting at (x, y) and
// returns its bounding box. Uses an explicit stack to avoid deep recursion on
// large blobs; connectivity is 8-connected (diagonals included).
func traceComponent(mask *image.Gray, visited []bool, startX, startY, w, h int) Box {
	minX, minY := startX, startY
	maxX, maxY := startX, startY

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		if visited[p.Y*w+p.X] || mask.Pix[p.Y*mask.Stride+p.X] == 0 {
			continue
		}
		visited[p.Y*w+p.X] = true

		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}

	return Box{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}
}
