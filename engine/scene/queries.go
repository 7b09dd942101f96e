package scene

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// queries bundles the scene's compiled-once query set. If any fails to
// compile, all previously compiled queries are released
// before the caller sees the error — donburi queries hold no external
// resources, so "release" here means dropping the reference.
type queries struct {
	transforms          *donburi.Query
	renderables         *donburi.Query
	shapes              *donburi.Query
	pointLights         *donburi.Query
	directionalLights   *donburi.Query
	valid               bool
}

func compileQueries() (*queries, error) {
	q := &queries{
		transforms:        donburi.NewQuery(filter.Contains(Transform)),
		renderables:       donburi.NewQuery(filter.Contains(Transform, MeshRenderer, RenderID)),
		shapes:            donburi.NewQuery(filter.Contains(Transform, Shape, RenderID)),
		pointLights:       donburi.NewQuery(filter.Contains(Transform, PointLight)),
		directionalLights: donburi.NewQuery(filter.Contains(DirectionalLight)),
	}
	q.valid = true
	return q, nil
}

func (q *queries) release() {
	if q == nil {
		return
	}
	q.transforms = nil
	q.renderables = nil
	q.shapes = nil
	q.pointLights = nil
	q.directionalLights = nil
	q.valid = false
}
