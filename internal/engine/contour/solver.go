package contour

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/voxel"
)

const (
	maxNormalsPerVertex   = 4
	maxMaterialsPerVertex = 4

	maxJacobiIterations = 20
	jacobiPrecision     = 1e-5
	minSingularValue    = 0.1

	weightMaximum = 255.0
)

// creaseCosine is the cosine of the largest angle between normals merged
// into one cluster.
var creaseCosine = math32.Cos(45 * math32.Pi / 180)

// solution is the vertex data shared by every normal cluster of a cell.
type solution struct {
	position    math.Vec3 // Cell-local, clamped to [0,1]
	normals     [maxNormalsPerVertex]math.Vec3
	normalCount int
	color       [3]uint8
	materials   [maxMaterialsPerVertex]uint8
	weights     [maxMaterialsPerVertex]uint8
}

// solve places the dual vertex of a cell from its crossings. Returns false
// when there are no crossings.
func solve(crossings []EdgeCrossing) (solution, bool) {
	var sol solution
	if len(crossings) == 0 {
		return sol, false
	}

	sol.normals, sol.normalCount = clusterNormals(crossings)
	sol.color = averageColor(crossings)
	sol.materials, sol.weights = blendMaterials(crossings)

	center := centroid(crossings)
	sol.position = minimize(crossings, center).Clamp(0, 1)
	return sol, true
}

// clusterNormals groups crossing normals that are within the crease angle
// of an existing cluster. Normals that fit no cluster once all slots are
// taken are dropped.
func clusterNormals(crossings []EdgeCrossing) ([maxNormalsPerVertex]math.Vec3, int) {
	var normals [maxNormalsPerVertex]math.Vec3
	count := 0
	for _, c := range crossings {
		j := 0
		for ; j < count; j++ {
			if normals[j].Dot(c.Normal) > creaseCosine {
				normals[j] = normals[j].Add(c.Normal).Normalize()
				break
			}
		}
		if j == count && count < maxNormalsPerVertex {
			normals[count] = c.Normal
			count++
		}
	}
	return normals, count
}

func centroid(crossings []EdgeCrossing) math.Vec3 {
	var sum math.Vec3
	for _, c := range crossings {
		sum = sum.Add(c.Point)
	}
	return sum.Scale(1 / float32(len(crossings)))
}

func averageColor(crossings []EdgeCrossing) [3]uint8 {
	var red, green, blue int
	for _, c := range crossings {
		red += int(voxel.Red(c.Color))
		green += int(voxel.Green(c.Color))
		blue += int(voxel.Blue(c.Color))
	}
	n := len(crossings)
	return [3]uint8{uint8(red / n), uint8(green / n), uint8(blue / n)}
}

// blendMaterials counts crossings per material id, filling up to four slots
// in order of first appearance. Counts are rescaled so they sum to at most 255.
func blendMaterials(crossings []EdgeCrossing) (ids, weights [maxMaterialsPerVertex]uint8) {
	var counts [maxMaterialsPerVertex]float32
	var total float32
	for _, c := range crossings {
		if c.Material == 0 {
			continue
		}
		for j := 0; j < maxMaterialsPerVertex; j++ {
			if ids[j] == c.Material {
				counts[j]++
				total++
				break
			}
			if ids[j] == 0 {
				ids[j] = c.Material
				counts[j] = 1
				total++
				break
			}
		}
	}
	if total > 0 {
		scale := weightMaximum / total
		for j := range counts {
			weights[j] = uint8(counts[j] * scale)
		}
	}
	return ids, weights
}

// minimize finds the point minimizing the squared distance to the crossing
// planes. The planes are reduced to a 4x4 upper triangle by Givens rotations,
// then the normal equations are solved through a truncated eigen
// decomposition so degenerate directions fall back to the centroid.
func minimize(crossings []EdgeCrossing, center math.Vec3) math.Vec3 {
	r := givensReduce(crossings, center)

	a := r.Mat3()
	b := r.Col(3)
	at := a.Transpose()
	ata := at.Mul(a)

	eigen, v := diagonalize(ata)
	inverse := math.Vec3{
		X: pseudoInverse(eigen.X),
		Y: pseudoInverse(eigen.Y),
		Z: pseudoInverse(eigen.Z),
	}
	ataPlus := v.Mul(math.Diagonal(inverse)).Mul(v.Transpose())
	return ataPlus.MulVec3(at.MulVec3(b)).Add(center)
}

// givensReduce folds each plane row (n, n·(p-center)) into an upper
// triangular matrix with one Givens rotation per column.
func givensReduce(crossings []EdgeCrossing, center math.Vec3) math.Mat4 {
	var r math.Mat4
	for _, c := range crossings {
		bottom := [4]float32{c.Normal.X, c.Normal.Y, c.Normal.Z, c.Normal.Dot(c.Point.Sub(center))}
		for j := 0; j < 4; j++ {
			sin, cos := math32.Sincos(math32.Atan2(-bottom[j], r.At(j, j)))
			for k := 0; k < 4; k++ {
				rjk := r.At(j, k)
				tmp := bottom[k]
				bottom[k] = sin*rjk + cos*tmp
				r.Set(j, k, cos*rjk-sin*tmp)
			}
		}
	}
	return r
}

// diagonalize runs classical Jacobi rotations on a symmetric matrix,
// returning its eigenvalues and the matrix whose columns are the matching
// eigenvectors. Stops after a fixed number of rotations if not converged.
func diagonalize(m math.Mat3) (math.Vec3, math.Mat3) {
	d := m
	v := math.Identity3()
	for i := 0; i < maxJacobiIterations; i++ {
		p, q := largestOffDiagonal(d)
		apq := d.At(p, q)
		if math32.Abs(apq) < jacobiPrecision {
			break
		}

		theta := 0.5 * math32.Atan2(2*apq, d.At(q, q)-d.At(p, p))
		sin, cos := math32.Sincos(theta)

		j := math.Identity3()
		j.Set(p, p, cos)
		j.Set(q, q, cos)
		j.Set(p, q, sin)
		j.Set(q, p, -sin)

		d = j.Transpose().Mul(d).Mul(j)
		v = v.Mul(j)
	}
	return d.Diag(), v
}

func largestOffDiagonal(m math.Mat3) (p, q int) {
	p, q = 0, 1
	largest := math32.Abs(m.At(0, 1))
	if v := math32.Abs(m.At(0, 2)); v > largest {
		p, q, largest = 0, 2, v
	}
	if v := math32.Abs(m.At(1, 2)); v > largest {
		p, q = 1, 2
	}
	return p, q
}

func pseudoInverse(eigenvalue float32) float32 {
	if eigenvalue < minSingularValue {
		return 0
	}
	return 1 / eigenvalue
}
