// Package schemas embeds the JSON Schemas used to validate input documents.
package schemas

import _ "embed"

// RunConfigSchemaJSON is the schema for run config files.
//
//go:embed runconfig.schema.json
var RunConfigSchemaJSON string
