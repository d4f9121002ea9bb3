package geometry

import "math"

// degenerateArea is the signed-area magnitude below which a polygon is
// treated as collinear for centroid purposes.
const degenerateArea = 1e-9

// SignedArea returns the shoelace signed area of the polygon. Counter-clockwise
// vertices (in a y-up frame) give a positive result. Fewer than 3 points give 0.
func SignedArea(points []Point2D) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return sum / 2
}

// PolygonArea returns the absolute shoelace area of the polygon.
func PolygonArea(points []Point2D) float64 {
	return math.Abs(SignedArea(points))
}

// PolygonPerimeter returns the sum of consecutive edge lengths, including the
// closing edge from the last point back to the first.
func PolygonPerimeter(points []Point2D) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		total += points[i].Distance(points[(i+1)%n])
	}
	return total
}

// PolygonCentroid returns the area-weighted centroid of the polygon. When the
// polygon is degenerate (collinear or fewer than 3 points) it falls back to
// the arithmetic mean of the vertices.
func PolygonCentroid(points []Point2D) Point2D {
	n := len(points)
	a := SignedArea(points)
	if n < 3 || math.Abs(a) < degenerateArea {
		return Centroid(points)
	}

	var cx, cy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := points[i].X*points[j].Y - points[j].X*points[i].Y
		cx += (points[i].X + points[j].X) * cross
		cy += (points[i].Y + points[j].Y) * cross
	}
	return Point2D{X: cx / (6 * a), Y: cy / (6 * a)}
}

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// distSq computes the squared distance between two points.
func distSq(a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}
