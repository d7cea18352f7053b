package extract

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const responseSchemaURL = "https://copextract.local/response.schema.json"

// responseSchema describes the JSON object the model is asked to return.
// Extra fields and nulls are allowed; only the types the decoder relies on
// are pinned down.
const responseSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "details": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["code", "name"],
        "properties": {
          "code": {"type": "string"},
          "name": {"type": "string"},
          "description": {"type": ["string", "null"]},
          "category": {"type": ["string", "null"]},
          "substrate": {"type": ["string", "null"]},
          "min_pitch": {"type": ["number", "null"]},
          "max_pitch": {"type": ["number", "null"]},
          "specifications": {"type": ["object", "null"]},
          "steps": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "properties": {
                "step": {"type": ["integer", "null"]},
                "instruction": {"type": ["string", "null"]},
                "note": {"type": ["string", "null"]}
              }
            }
          },
          "standards_refs": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "required": ["code"],
              "properties": {
                "code": {"type": "string"},
                "clause": {"type": ["string", "null"]},
                "title": {"type": ["string", "null"]}
              }
            }
          },
          "ventilation_checks": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "properties": {
                "check": {"type": ["string", "null"]},
                "required": {"type": ["boolean", "null"]}
              }
            }
          }
        }
      }
    },
    "standards": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["code"],
        "properties": {
          "code": {"type": "string"},
          "title": {"type": ["string", "null"]},
          "clause": {"type": ["string", "null"]},
          "url": {"type": ["string", "null"]}
        }
      }
    },
    "warnings": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["message"],
        "properties": {
          "detail_code": {"type": ["string", "null"]},
          "level": {"type": ["string", "null"]},
          "message": {"type": "string"},
          "condition": {"type": ["object", "null"]},
          "nzbc_ref": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(responseSchemaURL, responseSchema)
	})
	return schema, schemaErr
}
