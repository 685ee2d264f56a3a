// Package loader reads external asset formats into scene primitives
// and textures: glTF/GLB geometry via qmuntal/gltf, PNG/JPEG images via
// the standard library and Radiance-HDR images via golang.org/x/image,
// spec.md §4.9 "collaborators".
package loader

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/lumetrace/lumetrace/internal/accel"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/material"
)

// LoadGLB reads every triangle mesh primitive out of a .glb/.gltf
// document's default scene, baking each node's world transform into
// the triangle vertices and resolving glTF metallic-roughness
// materials into material.PBR. Primitives with no material get
// defaultMat.
func LoadGLB(path string, defaultMat material.Material) ([]accel.Primitive, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %q: %w", path, err)
	}

	mats := make([]material.Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mats[i] = defaultMat
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mats[i] = material.PBR{
				BaseColor: core.NewSpectrum(float64(cf[0]), float64(cf[1]), float64(cf[2])),
				Metallic:  pbr.MetallicFactorOrDefault(),
				Roughness: pbr.RoughnessFactorOrDefault(),
			}
		}
	}

	var out []accel.Primitive
	roots := defaultSceneNodes(doc)
	for _, idx := range roots {
		out, err = walkNode(doc, idx, core.IdentityTransform(), mats, defaultMat, out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// composeTransform chains parent*local the way a scene graph would,
// recomputing MInv/NormalM from the combined matrix.
func composeTransform(parent, local core.Transform) core.Transform {
	m := parent.M.Mul(local.M)
	inv, ok := m.Inverse()
	if !ok {
		inv = core.IdentityMatrix4()
	}
	return core.Transform{M: m, MInv: inv, NormalM: inv.Transpose()}
}

func defaultSceneNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		s := doc.Scenes[*doc.Scene]
		idxs := make([]int, len(s.Nodes))
		for i, n := range s.Nodes {
			idxs[i] = int(n)
		}
		return idxs
	}
	idxs := make([]int, len(doc.Nodes))
	for i := range doc.Nodes {
		idxs[i] = i
	}
	return idxs
}

func walkNode(doc *gltf.Document, nodeIdx int, parent core.Transform, mats []material.Material, defaultMat material.Material, out []accel.Primitive) ([]accel.Primitive, error) {
	gn := doc.Nodes[nodeIdx]
	local := nodeTransform(gn)
	world := composeTransform(parent, local)

	if gn.Mesh != nil {
		mesh := doc.Meshes[*gn.Mesh]
		for _, prim := range mesh.Primitives {
			tris, err := loadPrimitive(doc, prim, world, mats, defaultMat)
			if err != nil {
				return nil, err
			}
			out = append(out, tris...)
		}
	}

	for _, c := range gn.Children {
		var err error
		out, err = walkNode(doc, int(c), world, mats, defaultMat, out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func nodeTransform(gn *gltf.Node) core.Transform {
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	translation := core.Vec3{X: float64(t[0]), Y: float64(t[1]), Z: float64(t[2])}
	rotation := core.Quaternion{X: float64(r[0]), Y: float64(r[1]), Z: float64(r[2]), W: float64(r[3])}
	scale := core.Vec3{X: float64(s[0]), Y: float64(s[1]), Z: float64(s[2])}
	return core.NewTRS(translation, rotation, scale)
}

func loadPrimitive(doc *gltf.Document, prim *gltf.Primitive, world core.Transform, mats []material.Material, defaultMat material.Material) ([]accel.Primitive, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("loader: primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("loader: positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vec3, len(positions))
	norms := make([]core.Vec3, len(positions))
	texco := make([]core.Vec2, len(positions))
	for i, p := range positions {
		verts[i] = world.Point(core.Vec3{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])})
		if i < len(normals) {
			n := normals[i]
			norms[i] = world.Normal(core.Vec3{X: float64(n[0]), Y: float64(n[1]), Z: float64(n[2])}).Normalize()
		}
		if i < len(uvs) {
			texco[i] = core.Vec2{X: float64(uvs[i][0]), Y: float64(uvs[i][1])}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("loader: indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	mat := defaultMat
	if prim.Material != nil && int(*prim.Material) < len(mats) {
		mat = mats[*prim.Material]
	}

	hasNormals := len(normals) > 0
	out := make([]accel.Primitive, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		tri := &accel.Triangle{
			P0: verts[a], P1: verts[b], P2: verts[c],
			UV0: texco[a], UV1: texco[b], UV2: texco[c],
			Mat: mat,
		}
		if hasNormals {
			tri.N0, tri.N1, tri.N2 = norms[a], norms[b], norms[c]
			tri.HasVertexNormals = true
		}
		out = append(out, tri)
	}
	return out, nil
}
