package scenario

import "github.com/santhosh-tekuri/jsonschema/v5"

// schemaJSON is the structural contract for scenario documents. Semantic
// rules (duplicate ids, unknown tags, geometry inside bounds) are checked
// after unmarshalling, where they can name the offending entity.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["environment", "robots", "tasks", "robot_states"],
  "properties": {
    "name": {"type": "string"},
    "dt": {"type": "number", "exclusiveMinimum": 0},
    "metric": {"enum": ["euclidean", "grid"]},
    "environment": {
      "type": "object",
      "required": ["width", "height"],
      "properties": {
        "width": {"type": "integer", "minimum": 1},
        "height": {"type": "integer", "minimum": 1},
        "obstacles": {"type": "array", "items": {"$ref": "#/$defs/cell"}},
        "zones": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["name", "type", "positions"],
            "properties": {
              "name": {"type": "string", "minLength": 1},
              "type": {"type": "string"},
              "positions": {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/cell"}}
            }
          }
        }
      }
    },
    "robots": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "capabilities", "speed"],
        "properties": {
          "id": {"type": "integer", "minimum": 0},
          "capabilities": {"type": "array", "items": {"type": "string"}},
          "speed": {"type": "number", "exclusiveMinimum": 0}
        }
      }
    },
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type", "duration"],
        "properties": {
          "id": {"type": "integer", "minimum": 0},
          "type": {"type": "string"},
          "location": {"$ref": "#/$defs/cell"},
          "pickup": {"$ref": "#/$defs/cell"},
          "dropoff": {"$ref": "#/$defs/cell"},
          "required_capabilities": {"type": "array", "items": {"type": "string"}},
          "duration": {"type": "number", "minimum": 0},
          "priority": {"type": "integer"}
        }
      }
    },
    "robot_states": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["robot_id", "position"],
        "properties": {
          "robot_id": {"type": "integer", "minimum": 0},
          "position": {
            "type": "array",
            "minItems": 2,
            "maxItems": 2,
            "items": {"type": "number"}
          },
          "battery_level": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    },
    "workload": {
      "type": "object",
      "properties": {
        "mode": {"enum": ["fixed", "poisson"]},
        "rate": {"type": "number"},
        "seed": {"type": "integer"},
        "types": {"type": "array", "items": {"type": "string"}}
      }
    }
  },
  "$defs": {
    "cell": {
      "type": "array",
      "minItems": 2,
      "maxItems": 2,
      "items": {"type": "integer"}
    }
  }
}`

var schema = jsonschema.MustCompileString("scenario.schema.json", schemaJSON)
