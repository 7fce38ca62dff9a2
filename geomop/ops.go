package geomop

import (
	"fmt"

	polyclip "github.com/ctessum/polyclip-go"
	"github.com/paulmach/orb"
)

// Union merges two polygonal geometries. A nil operand acts as the
// identity so the result is the other geometry unchanged.
func Union(a, b orb.Geometry) (orb.Geometry, error) {
	if a == nil {
		if b == nil {
			return nil, nil
		}
		bc, err := toClip(b)
		if err != nil {
			return nil, err
		}
		return fromClip(bc), nil
	}
	if b == nil {
		ac, err := toClip(a)
		if err != nil {
			return nil, err
		}
		return fromClip(ac), nil
	}
	return binary(polyclip.UNION, a, b)
}

// Intersection returns the area common to both geometries, nil when they
// do not overlap.
func Intersection(a, b orb.Geometry) (orb.Geometry, error) {
	return binary(polyclip.INTERSECTION, a, b)
}

// Difference returns the part of a not covered by b, nil when b covers a
// entirely.
func Difference(a, b orb.Geometry) (orb.Geometry, error) {
	return binary(polyclip.DIFFERENCE, a, b)
}

func binary(op polyclip.Op, a, b orb.Geometry) (orb.Geometry, error) {
	ac, err := toClip(a)
	if err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	bc, err := toClip(b)
	if err != nil {
		return nil, fmt.Errorf("clipping: %w", err)
	}
	out, err := construct(op, ac, bc)
	if err != nil {
		return nil, err
	}
	return fromClip(out), nil
}

// construct runs the clipper, converting its panics on pathological input
// into errors the caller can skip on.
func construct(op polyclip.Op, subject, clipping polyclip.Polygon) (result polyclip.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("clipper failed: %v", r)
		}
	}()
	result = subject.Construct(op, clipping)
	return result, nil
}

// FoldUnion unions geometries left to right in slice order. The first
// usable geometry seeds the accumulator; elements whose union step fails
// are reported through skip and left out, keeping the running result
// intact. Returns nil when nothing usable remains.
func FoldUnion(geoms []orb.Geometry, skip func(i int, err error)) orb.Geometry {
	var acc orb.Geometry
	for i, g := range geoms {
		if g == nil {
			if skip != nil {
				skip(i, ErrNotPolygonal)
			}
			continue
		}
		next, err := Union(acc, g)
		if err != nil {
			if skip != nil {
				skip(i, err)
			}
			continue
		}
		acc = next
	}
	return acc
}
