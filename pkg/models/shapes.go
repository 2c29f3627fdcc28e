package models

import (
	"math"

	"github.com/taigrr/portals/pkg/math3d"
)

// boxFaces lists the outward normal, right and up axes of each box face as
// seen from outside.
var boxFaces = [6][3]math3d.Vec3{
	{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
	{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
	{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
	{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
}

// NewBox creates a box of the given size centred on the origin, with flat
// normals and a full 0..1 UV square on every face. All faces use material 0.
func NewBox(name string, size math3d.Vec3) *Mesh {
	m := NewMesh(name)
	m.Materials = []Material{DefaultMaterial()}
	half := size.Scale(0.5)

	for _, f := range boxFaces {
		normal, right, up := f[0], f[1], f[2]
		m.addFace(
			normal.Mul(half),
			right.Scale(extent(right, half)),
			up.Scale(extent(up, half)),
			normal,
			0,
		)
	}
	m.CalculateBounds()
	return m
}

// NewQuad creates a width x height rectangle in the XY plane facing +Z.
func NewQuad(name string, width, height float64) *Mesh {
	m := NewMesh(name)
	m.Materials = []Material{DefaultMaterial()}
	m.addFace(
		math3d.Zero3(),
		math3d.V3(width/2, 0, 0),
		math3d.V3(0, height/2, 0),
		math3d.V3(0, 0, 1),
		0,
	)
	m.CalculateBounds()
	return m
}

// DefaultMaterial is an untextured white material.
func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		BaseColor: [4]float64{1, 1, 1, 1},
		Roughness: 1,
	}
}

// extent is the half size of a box along an axis direction.
func extent(axis, half math3d.Vec3) float64 {
	return math.Abs(axis.X)*half.X + math.Abs(axis.Y)*half.Y + math.Abs(axis.Z)*half.Z
}

// addFace appends a rectangle spanning centre +/- right +/- up. Triangles
// wind clockwise when seen from the side normal points to.
func (m *Mesh) addFace(centre, right, up, normal math3d.Vec3, material int) {
	base := len(m.Vertices)
	corners := [4]struct {
		pos math3d.Vec3
		uv  math3d.Vec2
	}{
		{centre.Sub(right).Sub(up), math3d.V2(0, 0)}, // bottom left
		{centre.Add(right).Sub(up), math3d.V2(1, 0)}, // bottom right
		{centre.Add(right).Add(up), math3d.V2(1, 1)}, // top right
		{centre.Sub(right).Add(up), math3d.V2(0, 1)}, // top left
	}
	for _, c := range corners {
		m.Vertices = append(m.Vertices, MeshVertex{Position: c.pos, Normal: normal, UV: c.uv})
	}
	m.Faces = append(m.Faces,
		Face{V: [3]int{base, base + 3, base + 2}, Material: material},
		Face{V: [3]int{base, base + 2, base + 1}, Material: material},
	)
}
