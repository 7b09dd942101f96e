package math

// Plane is a half-space boundary in Hessian normal form: a point p is on
// the positive side iff Normal.Dot(p) + D >= 0.
type Plane struct {
	Normal Vec3
	D      float32
}

func (p Plane) DistanceToPoint(point Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

func (p Plane) normalized() Plane {
	length := p.Normal.Length()
	if length == 0 {
		return p
	}
	inv := 1.0 / length
	return Plane{Normal: p.Normal.MulScalar(inv), D: p.D * inv}
}

// Frustum is the six half-spaces of a view-projection transform, used by
// the world view layer to cull meshes against a bounding sphere before
// they are added to the draw batch.
type Frustum struct {
	Planes [6]Plane
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromViewProjection extracts the six frustum planes from the
// combined view*projection transform (this package's matrices use a
// row-vector convention, v_clip = v_world * view * projection, so planes
// are built from columns of the combined matrix rather than rows).
func NewFrustumFromViewProjection(view, projection Mat4) Frustum {
	m := view.Mul(projection)

	col := func(k int) (float32, float32, float32, float32) {
		return m.Data[k], m.Data[4+k], m.Data[8+k], m.Data[12+k]
	}
	c0x, c0y, c0z, c0w := col(0)
	c1x, c1y, c1z, c1w := col(1)
	c2x, c2y, c2z, c2w := col(2)
	c3x, c3y, c3z, c3w := col(3)

	mk := func(x, y, z, w float32) Plane {
		return Plane{Normal: Vec3{X: x, Y: y, Z: z}, D: w}.normalized()
	}

	var f Frustum
	f.Planes[FrustumLeft] = mk(c3x+c0x, c3y+c0y, c3z+c0z, c3w+c0w)
	f.Planes[FrustumRight] = mk(c3x-c0x, c3y-c0y, c3z-c0z, c3w-c0w)
	f.Planes[FrustumBottom] = mk(c3x+c1x, c3y+c1y, c3z+c1z, c3w+c1w)
	f.Planes[FrustumTop] = mk(c3x-c1x, c3y-c1y, c3z-c1z, c3w-c1w)
	f.Planes[FrustumNear] = mk(c3x+c2x, c3y+c2y, c3z+c2z, c3w+c2w)
	f.Planes[FrustumFar] = mk(c3x-c2x, c3y-c2y, c3z-c2z, c3w-c2w)
	return f
}

// TestSphere rejects a bounding sphere that lies fully outside any plane.
func (f Frustum) TestSphere(center Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}
