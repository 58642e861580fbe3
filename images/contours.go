package images

import (
	"image"
	"math"
)

// Contour is the outer boundary of one connected foreground component.
//
// Points are boundary pixel coordinates in tracing order, relative to the mask
// origin. A component made of a single pixel has a one point contour.
type Contour struct {
	Points []image.Point
}

// Area returns the area enclosed by the contour polygon.
//
// The polygon runs through the centers of the boundary pixels, so the result
// follows the usual contour-area convention rather than counting pixels: a
// single pixel or a one pixel wide line has area 0 and a filled w×h block has
// area (w-1)*(h-1). Holes inside the component are not subtracted.
func (c Contour) Area() float64 {
	if len(c.Points) < 3 {
		return 0
	}
	return contourArea(c.Points)
}

// polygonArea applies the shoelace formula to a closed polygon.
func polygonArea(points []image.Point) float64 {
	n := len(points)
	var sum int
	for i, p := range points {
		q := points[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

// BoundingRect returns the smallest rectangle containing every boundary pixel.
//
// Max is exclusive, so Dx() and Dy() are the extent in pixels.
func (c Contour) BoundingRect() image.Rectangle {
	if len(c.Points) == 0 {
		return image.Rectangle{}
	}
	return contourBounds(c.Points)
}

func pointBounds(points []image.Point) image.Rectangle {
	r := image.Rectangle{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}

// neighbors lists the 8 neighbor offsets in clockwise order (y grows downward),
// starting east.
var neighbors = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// west is the index of the {-1, 0} offset in neighbors.
const west = 4

// FindExternalContours finds the outer boundary of every top-level connected
// foreground region of a binary mask.
//
// # Connectivity
//
// Foreground is any non-zero sample. Foreground pixels are connected through
// their 8 neighbors, background pixels through their 4 neighbors, and every
// pixel outside the mask counts as background.
//
// # Nesting
//
// Only external boundaries are returned. Hole boundaries are never reported,
// and a foreground component that sits inside a hole of another component is
// skipped entirely, together with anything nested inside it. A component is
// top-level when the background just left of its first pixel in raster order
// is connected to the area outside the mask.
//
// # Ordering
//
// Contours are returned in raster order of each component's first pixel:
// top to bottom, then left to right.
//
// # Algorithm
//
// The outer border of each top-level component is followed with the
// Suzuki-Abe border following procedure, starting at its first pixel with the
// west neighbor as the entry point. Built with the withcv tag the same
// retrieval is done by OpenCV's findContours.
func FindExternalContours(mask *image.Gray) []Contour {
	b := mask.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}
	return findContours(mask)
}

// traceExternalContours is the pure Go border follower behind FindExternalContours.
func traceExternalContours(mask *image.Gray) []Contour {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()

	fg := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := mask.Pix[mask.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			fg[y*w+x] = row[x] != 0
		}
	}
	at := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && fg[y*w+x]
	}

	outside := outerBackground(fg, w, h)
	visited := make([]bool, w*h)
	contours := make([]Contour, 0)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !fg[i] || visited[i] {
				continue
			}

			markComponent(fg, visited, w, h, x, y)

			if x > 0 && !outside[i-1] {
				continue
			}

			contours = append(contours, Contour{Points: traceBorder(at, image.Pt(x, y))})
		}
	}

	return contours
}

// outerBackground marks the background pixels 4-connected to the area outside the mask.
func outerBackground(fg []bool, w, h int) []bool {
	outside := make([]bool, w*h)
	stack := make([]image.Point, 0, 2*(w+h))

	push := func(x, y int) {
		i := y*w + x
		if fg[i] || outside[i] {
			return
		}
		outside[i] = true
		stack = append(stack, image.Pt(x, y))
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X > 0 {
			push(p.X-1, p.Y)
		}
		if p.X < w-1 {
			push(p.X+1, p.Y)
		}
		if p.Y > 0 {
			push(p.X, p.Y-1)
		}
		if p.Y < h-1 {
			push(p.X, p.Y+1)
		}
	}

	return outside
}

// markComponent flags every pixel 8-connected to (x, y) as visited.
func markComponent(fg, visited []bool, w, h, x, y int) {
	stack := []image.Point{{X: x, Y: y}}
	visited[y*w+x] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range neighbors {
			q := p.Add(d)
			if q.X < 0 || q.Y < 0 || q.X >= w || q.Y >= h {
				continue
			}
			j := q.Y*w + q.X
			if fg[j] && !visited[j] {
				visited[j] = true
				stack = append(stack, q)
			}
		}
	}
}

// traceBorder follows the outer border that starts at start, whose west
// neighbor is background.
func traceBorder(at func(x, y int) bool, start image.Point) []image.Point {
	// Search clockwise from the west neighbor for the first foreground neighbor.
	first := -1
	for i := 0; i < 8; i++ {
		d := (west + i) % 8
		if q := start.Add(neighbors[d]); at(q.X, q.Y) {
			first = d
			break
		}
	}
	if first < 0 {
		return []image.Point{start}
	}

	p1 := start.Add(neighbors[first])
	prev, cur := p1, start
	points := make([]image.Point, 0, 64)

	for {
		// Search counterclockwise around cur, starting just after prev.
		from := direction(prev.Sub(cur))
		next := prev
		for i := 1; i <= 8; i++ {
			q := cur.Add(neighbors[(from-i+8)%8])
			if at(q.X, q.Y) {
				next = q
				break
			}
		}

		points = append(points, cur)
		if next == start && cur == p1 {
			return points
		}
		prev, cur = cur, next
	}
}

// direction returns the index in neighbors of a unit offset.
func direction(d image.Point) int {
	for i, n := range neighbors {
		if n == d {
			return i
		}
	}
	return 0
}
