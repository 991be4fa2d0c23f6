package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

const configSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "storage": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "driver": { "type": "string", "enum": ["yaml", "memory", "buntdb", "sqlite"] },
        "path": { "type": "string" }
      }
    },
    "dashboard": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "addr": { "type": "string" },
        "refresh": { "type": "string", "pattern": "^([0-9]+(\\.[0-9]+)?(ms|s|m|h))+$" }
      }
    },
    "timezone": { "type": "string" },
    "log": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": { "type": "string", "enum": ["debug", "info", "warn", "error"] },
        "file": { "type": "string" }
      }
    },
    "centers": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "dining": { "$ref": "#/definitions/center" },
        "lounge": { "$ref": "#/definitions/center" },
        "patio": { "$ref": "#/definitions/center" },
        "unknown": { "$ref": "#/definitions/center" }
      }
    }
  },
  "definitions": {
    "center": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "label": { "type": "string" },
        "icon": { "type": "string" },
        "color": { "type": "string", "pattern": "^#[0-9a-fA-F]{6}$" },
        "divisor": { "type": "number", "exclusiveMinimum": 0 }
      }
    }
  }
}`

var configSchemaLoader = gojsonschema.NewStringLoader(configSchemaJSON)

// Validate checks a YAML config document against the config schema.
func Validate(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if doc == nil {
		return nil
	}

	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	result, err := gojsonschema.Validate(configSchemaLoader, gojsonschema.NewStringLoader(string(jsonDoc)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(issues, "; "))
}
