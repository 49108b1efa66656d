package preprocess

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

// Deskew estimates the slant of the foreground and rotates the mask to
// counteract it, so text baselines become horizontal.
//
// The angle comes from the minimum-area bounding rectangle over all
// foreground pixel coordinates, reported in the (-90, 0] degree range. The
// sign-correction convention is deliberate and must not change: it silently
// shifts every downstream prediction.
//
//	angle < -45  =>  corrected = -(90 + angle)
//	otherwise    =>  corrected = -angle
//
// The mask is rotated about its center by the corrected angle using linear
// interpolation; border pixels exposed by the rotation are filled with 0
// (background). A mask with no foreground pixels is returned unchanged.
func Deskew(mask *image.Gray) *image.Gray {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()

	points := foregroundPoints(mask)
	if len(points) == 0 {
		return cloneGray(mask)
	}

	angle := minAreaRectAngle(points)
	if angle < -45 {
		angle = -(90 + angle)
	} else {
		angle = -angle
	}
	if angle == 0 {
		return cloneGray(mask)
	}

	// imaging.Rotate grows the canvas to fit the rotated image; cropping the
	// center back to the original size composes to a rotation about the
	// image center with the canvas preserved.
	rotated := imaging.Rotate(mask, angle, color.NRGBA{0, 0, 0, 255})
	return grayFromNRGBA(imaging.CropCenter(rotated, w, h))
}

func foregroundPoints(mask *image.Gray) []image.Point {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	points := make([]image.Point, 0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.Pix[y*mask.Stride+x] > 0 {
				points = append(points, image.Point{X: x, Y: y})
			}
		}
	}
	return points
}

// minAreaRectAngle returns the orientation, in degrees normalized to the
// (-90, 0] range, of the minimum-area rectangle enclosing the points.
//
// The rectangle is found with the rotating-calipers method over the convex
// hull: the minimum-area enclosing rectangle always has one side collinear
// with a hull edge, so it suffices to test each edge's orientation.
func minAreaRectAngle(points []image.Point) float64 {
	hull := convexHull(points)

	switch len(hull) {
	case 0, 1:
		return 0
	case 2:
		// Degenerate (collinear) point set: use the segment direction.
		return normalizeAngle(math.Atan2(
			float64(hull[1].Y-hull[0].Y),
			float64(hull[1].X-hull[0].X),
		) * 180 / math.Pi)
	}

	bestArea := math.Inf(1)
	bestAngle := 0.0
	for i := 0; i < len(hull); i++ {
		j := (i + 1) % len(hull)
		dx := float64(hull[j].X - hull[i].X)
		dy := float64(hull[j].Y - hull[i].Y)
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		ux, uy := dx/length, dy/length
		// Perpendicular axis
		vx, vy := -uy, ux

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu := float64(p.X)*ux + float64(p.Y)*uy
			pv := float64(p.X)*vx + float64(p.Y)*vy
			minU = math.Min(minU, pu)
			maxU = math.Max(maxU, pu)
			minV = math.Min(minV, pv)
			maxV = math.Max(maxV, pv)
		}

		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			bestAngle = math.Atan2(dy, dx) * 180 / math.Pi
		}
	}

	return normalizeAngle(bestAngle)
}

// normalizeAngle maps an orientation to the (-90, 0] degree range. A
// rectangle's orientation is only defined up to multiples of 90 degrees, so
// this fixes the representative the correction rule expects.
func normalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 90)
	if a > 0 {
		a -= 90
	}
	if a <= -90 {
		a += 90
	}
	return a
}

// convexHull computes the convex hull with the Andrew monotone chain
// algorithm, returning vertices in counter-clockwise order. Collinear point
// sets collapse to their two extreme points.
func convexHull(points []image.Point) []image.Point {
	if len(points) < 3 {
		return append([]image.Point(nil), points...)
	}

	pts := append([]image.Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []image.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []image.Point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// grayFromNRGBA extracts the red channel of an NRGBA image whose channels
// are known to be equal.
func grayFromNRGBA(img *image.NRGBA) *image.Gray {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = img.Pix[y*img.Stride+x*4]
		}
	}
	return out
}
