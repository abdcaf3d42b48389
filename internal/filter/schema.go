package filter

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// treeSchema describes the exact shapes the encoder produces. Decoding does
// not need it; it is applied where filters enter from outside.
const treeSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"definitions": {
		"node": {
			"anyOf": [
				{"type": "array", "items": {"$ref": "#/definitions/node"}},
				{
					"type": "object",
					"required": ["-or"],
					"maxProperties": 1,
					"properties": {"-or": {"type": "array", "items": {"$ref": "#/definitions/node"}}}
				},
				{
					"type": "object",
					"required": ["-and"],
					"maxProperties": 1,
					"properties": {"-and": {"type": "array", "items": {"$ref": "#/definitions/node"}}}
				},
				{
					"type": "object",
					"required": ["-not"],
					"maxProperties": 1,
					"properties": {"-not": {"$ref": "#/definitions/node"}}
				},
				{
					"type": "object",
					"minProperties": 1,
					"maxProperties": 1,
					"additionalProperties": {
						"type": "object",
						"minProperties": 1,
						"maxProperties": 1,
						"additionalProperties": {"type": ["string", "number", "boolean", "null"]}
					}
				}
			]
		}
	},
	"type": "array",
	"items": {"$ref": "#/definitions/node"}
}`

var treeSchemaLoader = gojsonschema.NewStringLoader(treeSchema)

// Validate checks that data is a filter tree of the documented shape
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(treeSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("error validating filter: %w", err)
	}

	if !result.Valid() {
		var messages []string
		for _, desc := range result.Errors() {
			messages = append(messages, "- "+desc.String())
		}
		return fmt.Errorf("filter JSON is not valid:\n%s", strings.Join(messages, "\n"))
	}
	return nil
}
