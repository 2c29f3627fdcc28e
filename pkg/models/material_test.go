package models

import (
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/portals/pkg/math3d"
)

func TestDefaultMaterial(t *testing.T) {
	m := DefaultMaterial()

	if m.BaseColor != [4]float64{1, 1, 1, 1} {
		t.Errorf("Expected opaque white, got %v", m.BaseColor)
	}
	if m.HasTexture {
		t.Errorf("HasTexture should be false by default")
	}
	if m.Slice.Normal.LenSq() != 0 {
		t.Errorf("default material should not slice")
	}
}

func TestConvertMaterial(t *testing.T) {
	metallic := 0.25
	m := convertMaterial(&gltf.Material{
		Name: "frame",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{0.5, 0.4, 0.3, 1},
			MetallicFactor:  &metallic,
		},
	})

	if m.Name != "frame" {
		t.Errorf("Name = %q, want frame", m.Name)
	}
	if m.BaseColor != [4]float64{0.5, 0.4, 0.3, 1} {
		t.Errorf("BaseColor = %v", m.BaseColor)
	}
	if m.Metallic != 0.25 || m.Roughness != 1 {
		t.Errorf("Metallic/Roughness = %v/%v, want 0.25/1", m.Metallic, m.Roughness)
	}

	bare := convertMaterial(&gltf.Material{Name: "bare"})
	if bare.BaseColor != [4]float64{1, 1, 1, 1} || bare.Metallic != 1 {
		t.Errorf("missing PBR block should use GLTF defaults, got %+v", bare)
	}
}

// TestFaceMaterialIndex verifies per-face material assignment.
func TestFaceMaterialIndex(t *testing.T) {
	mesh := NewMesh("test")
	mesh.Materials = []Material{
		{Name: "frame", BaseColor: [4]float64{1, 0, 0, 1}},
		{Name: "canvas", BaseColor: [4]float64{0, 1, 0, 1}},
	}
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{3, 4, 5}, Material: 1},
		{V: [3]int{6, 7, 8}, Material: -1},
	}

	if mesh.GetFaceMaterial(1) != 1 {
		t.Errorf("Face 1 should have material 1, got %d", mesh.GetFaceMaterial(1))
	}
	if mesh.GetFaceMaterial(2) != -1 {
		t.Errorf("Face 2 should have material -1, got %d", mesh.GetFaceMaterial(2))
	}
	if mat := mesh.GetMaterial(0); mat == nil || mat.Name != "frame" {
		t.Errorf("GetMaterial(0) should return 'frame' material")
	}
	if mesh.GetMaterial(-1) != nil {
		t.Errorf("GetMaterial(-1) should return nil")
	}
	if mesh.GetMaterial(99) != nil {
		t.Errorf("GetMaterial(99) should return nil for out-of-bounds")
	}
}

// TestCloneHasIndependentSlices verifies a clone can be sliced without
// touching the original.
func TestCloneHasIndependentSlices(t *testing.T) {
	mesh := NewBox("player", math3d.V3(1, 2, 1))
	mesh.SetSlice(math3d.V3(0, 0, 5), math3d.V3(0, 0, 1))

	clone := mesh.Clone()
	clone.SetSlice(math3d.V3(10, 0, 0), math3d.V3(-1, 0, 0))
	clone.SetSliceOffsetDst(0.1)

	centre, normal, offset := mesh.GetFaceSlice(0)
	if centre != math3d.V3(0, 0, 5) || normal != math3d.V3(0, 0, 1) || offset != 0 {
		t.Errorf("original slice changed to %v %v %v", centre, normal, offset)
	}
	centre, normal, offset = clone.GetFaceSlice(0)
	if centre != math3d.V3(10, 0, 0) || normal != math3d.V3(-1, 0, 0) || offset != 0.1 {
		t.Errorf("clone slice = %v %v %v", centre, normal, offset)
	}

	clone.Materials[0].Name = "modified"
	if mesh.Materials[0].Name == "modified" {
		t.Errorf("Clone should have independent material copy")
	}
}

func TestFaceSliceFallsBackToMesh(t *testing.T) {
	mesh := NewMesh("loose")
	mesh.Faces = []Face{{V: [3]int{0, 1, 2}, Material: -1}}
	mesh.SetSlice(math3d.V3(1, 2, 3), math3d.V3(0, 1, 0))
	mesh.SetSliceOffsetDst(-0.5)

	centre, normal, offset := mesh.GetFaceSlice(0)
	if centre != math3d.V3(1, 2, 3) || normal != math3d.V3(0, 1, 0) || offset != -0.5 {
		t.Errorf("GetFaceSlice = %v %v %v", centre, normal, offset)
	}

	mesh.ClearSlice()
	if _, normal, _ := mesh.GetFaceSlice(0); normal.LenSq() != 0 {
		t.Errorf("ClearSlice left normal %v", normal)
	}
}
