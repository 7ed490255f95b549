package scene

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

func buildScene(t *testing.T, setup func(b *Builder, mat material.Handle)) *Scene {
	t.Helper()
	b := NewBuilder()
	mat := b.AddMaterial(material.NewLambertian("grey", core.NewVec3(0.5, 0.5, 0.5)))
	setup(b, mat)
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return s
}

func TestBuilder_Build(t *testing.T) {
	s := buildScene(t, func(b *Builder, mat material.Handle) {
		b.AddTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), mat).
			AddQuad(core.NewVec3(0, 0, -1), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), mat).
			AddSphere(core.NewVec3(0, 0, -5), 1, mat).
			AddLight(core.NewVec3(0, 5, 0), core.NewVec3(1, 1, 1))
	})

	if len(s.Objects()) != 3 {
		t.Errorf("Expected 3 triangles (1 + quad), got %d", len(s.Objects()))
	}
	if len(s.Spheres()) != 1 || len(s.Lights()) != 1 {
		t.Errorf("Expected 1 sphere and 1 light, got %d and %d", len(s.Spheres()), len(s.Lights()))
	}
	if s.GetPrimitiveCount() != 4 {
		t.Errorf("Expected 4 primitives, got %d", s.GetPrimitiveCount())
	}
	if m := s.Material(s.Spheres()[0].Material); m == nil || m.Name != "grey" {
		t.Errorf("Expected sphere material to resolve to grey, got %+v", m)
	}
}

func TestBuilder_BuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *Builder, mat material.Handle)
	}{
		{"unresolved triangle material", func(b *Builder, mat material.Handle) {
			b.AddTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), material.NoHandle)
		}},
		{"unresolved sphere material", func(b *Builder, mat material.Handle) {
			b.AddSphere(core.NewVec3(0, 0, 0), 1, mat+5)
		}},
		{"zero radius", func(b *Builder, mat material.Handle) {
			b.AddSphere(core.NewVec3(0, 0, 0), 0, mat)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			mat := b.AddMaterial(material.New("m"))
			tt.setup(b, mat)
			if _, err := b.Build(); err == nil {
				t.Error("Expected Build to fail")
			}
		})
	}
}

func TestClosest_PicksNearestAcrossKinds(t *testing.T) {
	b := NewBuilder()
	near := b.AddMaterial(material.New("near"))
	far := b.AddMaterial(material.New("far"))
	// Triangle at z=-10 is further than the sphere surface at z=-4
	b.AddTriangle(core.NewVec3(-5, -5, -10), core.NewVec3(5, -5, -10), core.NewVec3(0, 5, -10), far)
	b.AddSphere(core.NewVec3(0, 0, -5), 1, near)
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	hit, ok := s.Closest(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)))
	if !ok {
		t.Fatal("Expected a hit")
	}
	if hit.Material.Name != "near" || hit.Kind != KindSphere || hit.Index != 0 {
		t.Errorf("Expected sphere 0 with material near, got %s %d %q", hit.Kind, hit.Index, hit.Material.Name)
	}
	if math.Abs(hit.Distance-4) > 1e-9 {
		t.Errorf("Expected distance 4, got %v", hit.Distance)
	}
}

func TestClosest_TiePrefersFirstPrimitive(t *testing.T) {
	b := NewBuilder()
	first := b.AddMaterial(material.New("first"))
	second := b.AddMaterial(material.New("second"))
	v0, v1, v2 := core.NewVec3(-1, -1, -3), core.NewVec3(1, -1, -3), core.NewVec3(0, 1, -3)
	b.AddTriangle(v0, v1, v2, first)
	b.AddTriangle(v0, v1, v2, second)
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	hit, ok := s.Closest(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)))
	if !ok || hit.Material.Name != "first" {
		t.Errorf("Expected first triangle to win the tie, got ok=%v %+v", ok, hit.Material)
	}
}

func TestClosest_Miss(t *testing.T) {
	s := buildScene(t, func(b *Builder, mat material.Handle) {
		b.AddSphere(core.NewVec3(0, 0, -5), 1, mat)
	})
	if _, ok := s.Closest(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))); ok {
		t.Error("Expected no hit")
	}

	empty := buildScene(t, func(b *Builder, mat material.Handle) {})
	if _, ok := empty.Closest(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))); ok {
		t.Error("Expected no hit in an empty scene")
	}
}

func TestClosest_SmoothShading(t *testing.T) {
	tilted := core.NewVec3(1, 0, 1).Normalize()
	s := buildScene(t, func(b *Builder, mat material.Handle) {
		b.AddSmoothTriangle(
			core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
			[3]core.Vec3{tilted, tilted, tilted},
			mat,
		)
	})

	hit, ok := s.Closest(core.NewRay(core.NewVec3(0.2, 0.2, 5), core.NewVec3(0, 0, -1)))
	if !ok {
		t.Fatal("Expected a hit")
	}
	if diff := cmp.Diff(tilted, hit.Normal, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Expected interpolated normal (-want +got):\n%s", diff)
	}
}

func TestClosest_FlatShadingIgnoresNormals(t *testing.T) {
	s := buildScene(t, func(b *Builder, mat material.Handle) {
		b.AddTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), mat)
	})

	hit, ok := s.Closest(core.NewRay(core.NewVec3(0.2, 0.2, 5), core.NewVec3(0, 0, -1)))
	if !ok {
		t.Fatal("Expected a hit")
	}
	if diff := cmp.Diff(core.NewVec3(0, 0, 1), hit.Normal, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Expected face normal (-want +got):\n%s", diff)
	}
}

func TestOccluded(t *testing.T) {
	s := buildScene(t, func(b *Builder, mat material.Handle) {
		b.AddSphere(core.NewVec3(0, 5, 0), 1, mat)
		b.AddTriangle(core.NewVec3(-6, 5, -1), core.NewVec3(-4, 5, -1), core.NewVec3(-5, 5, 1), mat)
	})
	down := core.NewVec3(0, -1, 0)

	tests := []struct {
		name   string
		origin core.Vec3
		length float64
		want   bool
	}{
		{"blocker between light and point", core.NewVec3(0, 10, 0), 10, true},
		{"point in front of blocker", core.NewVec3(0, 10, 0), 3, false},
		{"surface itself within bias", core.NewVec3(0, 10, 0), 4 + core.Bias/2, false},
		{"ray misses blocker", core.NewVec3(3, 10, 0), 10, false},
		{"triangle blocker", core.NewVec3(-5, 10, 0), 10, true},
		{"point above triangle", core.NewVec3(-5, 10, 0), 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Occluded(core.NewRay(tt.origin, down), tt.length); got != tt.want {
				t.Errorf("Occluded() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInsideAnySphere(t *testing.T) {
	s := buildScene(t, func(b *Builder, mat material.Handle) {
		b.AddSphere(core.NewVec3(0, 0, 0), 1, mat)
		b.AddSphere(core.NewVec3(10, 0, 0), 2, mat)
	})

	tests := []struct {
		name string
		p    core.Vec3
		want bool
	}{
		{"center of first", core.NewVec3(0, 0, 0), true},
		{"inside second", core.NewVec3(11, 0, 0), true},
		{"exactly on surface", core.NewVec3(1, 0, 0), false},
		{"outside both", core.NewVec3(5, 0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.InsideAnySphere(tt.p); got != tt.want {
				t.Errorf("InsideAnySphere(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}
