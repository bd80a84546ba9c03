package swagger

import _ "embed"

// OpenAPI is the OpenAPI 3 description of the goalcast HTTP API.
//
//go:embed openapi.yaml
var OpenAPI []byte
