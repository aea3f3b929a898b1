// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package scene provides functionality for creating and
// rendering scene graphs.
//
// A Scene is an acyclic node tree whose nodes carry typed
// properties -- the external interface the frame graph consumes to
// decide what to draw. The closed set of property kinds
// is {transform, shadowFlags, mesh, skinnedMesh, material,
// boneTransforms, pointLight, directionalLight, spotLight, skybox,
// camera, wireframe}. The scene is immutable across a frame: Update
// is called once before the frame graph reads it.
package scene

import (
	"github.com/gviegas/rgcore/gpu"
	"github.com/gviegas/rgcore/linear"
	"github.com/gviegas/rgcore/node"
)

// PropKind identifies a property kind in the closed set a node may
// carry.
type PropKind int

// Property kinds.
const (
	PropTransform PropKind = iota
	PropShadowFlags
	PropMesh
	PropSkinnedMesh
	PropMaterial
	PropBoneTransforms
	PropPointLight
	PropDirectionalLight
	PropSpotLight
	PropSkybox
	PropCamera
	PropWireframe
)

// Transform is the PropTransform value: a local transform plus the
// dirty flag node.Graph.Update consumes.
type Transform struct {
	local   linear.M4
	changed bool
}

// NewTransform returns an identity Transform.
func NewTransform() *Transform {
	t := &Transform{changed: true}
	t.local.I()
	return t
}

// Set replaces the local transform.
func (t *Transform) Set(m linear.M4) {
	t.local = m
	t.changed = true
}

// Local implements node.Interface.
func (t *Transform) Local() *linear.M4 { return &t.local }

// Changed implements node.Interface. node.Graph.Update calls it at
// most once per update, so it clears the flag on read.
func (t *Transform) Changed() bool {
	c := t.changed
	t.changed = false
	return c
}

// ShadowFlags selects which shadow-casting/receiving behavior a
// node participates in.
type ShadowFlags int

// Shadow flags.
const (
	ShadowCast ShadowFlags = 1 << iota
	ShadowReceive
)

// MeshRef names a drawable mesh: the VAO to bind and the draw call
// that renders it.
type MeshRef struct {
	VAO       *gpu.VertexArrayObject
	Primitive gpu.Primitive
	Draw      gpu.DrawCall
}

// SkinnedMeshRef is a MeshRef driven by the node's PropBoneTransforms.
type SkinnedMeshRef struct {
	MeshRef
}

// MaterialRef names the render pipeline and shader-resource
// bindings a mesh draws with.
type MaterialRef struct {
	Pipeline  *gpu.RenderPipeline
	Resources []gpu.ShaderResource
}

// BoneTransforms is a flat array of skinning matrices, uploaded to
// a uniform or storage buffer by the pass that consumes it.
type BoneTransforms []linear.M4

// PointLight is an omnidirectional light source.
type PointLight struct {
	Color     linear.V3
	Intensity float32
	Range     float32
}

// DirectionalLight is a light source with parallel rays.
type DirectionalLight struct {
	Color     linear.V3
	Intensity float32
}

// SpotLight is a directional, cone-bounded light source.
type SpotLight struct {
	Color     linear.V3
	Intensity float32
	Range     float32
	InnerCone float32
	OuterCone float32
}

// Skybox names the texture sampled for the background and ambient
// environment.
type Skybox struct {
	Texture *gpu.Texture
}

// Camera is a view/projection pair.
type Camera struct {
	View linear.M4
	Proj linear.M4
}

// Wireframe, when present on a node, requests wireframe
// rasterization in place of the material's configured fill mode.
type Wireframe struct{}

// entity is the node.Interface stored in the graph: the node's
// transform plus its other properties, keyed by kind.
type entity struct {
	*Transform
	props map[PropKind]any
}

// NodeID identifies a node within a Scene.
type NodeID = node.Node

// Root is the NodeID passed to Insert to create a top-level node.
const Root NodeID = node.Nil

// Scene is a node tree of entities, each carrying a set of typed
// properties. The zero value is an empty, usable scene.
type Scene struct {
	graph node.Graph
}

// New creates an initialized scene.
func New() *Scene { return new(Scene).Init() }

// Init (re)initializes a scene, discarding any existing nodes.
func (s *Scene) Init() *Scene {
	s.graph = node.Graph{}
	return s
}

// Insert adds a new node as a child of parent (or as a top-level
// node, if parent is Root), with the given transform, and returns
// its ID. t may be nil, in which case an identity Transform is used.
func (s *Scene) Insert(parent NodeID, t *Transform) NodeID {
	if t == nil {
		t = NewTransform()
	}
	return s.graph.Insert(&entity{Transform: t, props: map[PropKind]any{}}, parent)
}

// Remove deletes a node and its descendants, returning the number
// of nodes removed.
func (s *Scene) Remove(n NodeID) int { return len(s.graph.Remove(n)) }

// SetProp attaches or replaces a property of the given kind on n.
func (s *Scene) SetProp(n NodeID, kind PropKind, value any) {
	s.graph.Get(n).(*entity).props[kind] = value
}

// Prop returns the property of the given kind attached to n, and
// whether it is present.
func (s *Scene) Prop(n NodeID, kind PropKind) (any, bool) {
	v, ok := s.graph.Get(n).(*entity).props[kind]
	return v, ok
}

// Transform returns the node's transform property.
func (s *Scene) Transform(n NodeID) *Transform {
	return s.graph.Get(n).(*entity).Transform
}

// World returns n's up-to-date world transform. Update must be
// called first if any transform changed since the last call.
func (s *Scene) World(n NodeID) linear.M4 { return *s.graph.World(n) }

// Update recomputes world transforms for every node whose local
// transform changed since the last call.
func (s *Scene) Update() { s.graph.Update() }

// Len returns the number of nodes in the scene.
func (s *Scene) Len() int { return s.graph.Len() }
