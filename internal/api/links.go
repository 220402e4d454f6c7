package api

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/config>; rel="config"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/config>; rel="config"`,
		`</api/v1/rasters>; rel="rasters"`,
	},
	"/api/v1/config": {
		`</api/v1/boundary>; rel="boundary"`,
		`</api/v1/basemaps>; rel="basemaps"`,
		`</api/v1/legend>; rel="legend"`,
	},
	"/api/v1/basemaps/{id}": {
		`</api/v1/basemaps>; rel="collection"`,
	},
	"/api/v1/location": {
		`</api/v1/coordinates>; rel="coordinates"`,
		`</api/v1/legend>; rel="legend"`,
	},
	"/api/v1/ramp": {
		`</api/v1/legend>; rel="legend"`,
	},
	"/api/v1/legend": {
		`</api/v1/ramp>; rel="ramp"`,
	},
	"/api/v1/tiles": {
		`</api/v1/legend>; rel="legend"`,
	},
	"/api/v1/rasters/{name}": {
		`</api/v1/rasters>; rel="collection"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}

		// Item endpoints get a self link
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		return v, nil
	}
}
