package task

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// tasksSchema is the shape every persisted collection must satisfy: an array
// of complete task records. A missing key, a wrong type, or a priority
// outside 0-255 is a hard decode failure. Unknown extra keys are tolerated.
const tasksSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title", "description", "priority", "status", "project"],
    "properties": {
      "title": {"type": "string"},
      "description": {"type": "string"},
      "priority": {"type": "integer", "minimum": 0, "maximum": 255},
      "status": {"type": "string"},
      "project": {"type": "string"}
    }
  }
}`

var compiledTasksSchema = jsonschema.MustCompileString("tasks.schema.json", tasksSchema)

// validateTasksDocument checks that data parses as JSON and satisfies
// tasksSchema. The returned error names the first offending record and field.
func validateTasksDocument(data []byte) error {
	var doc any

	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := compiledTasksSchema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("schema violation %s", flattenValidationError(verr))
		}

		return err
	}

	return nil
}

// flattenValidationError walks to the most specific cause, which names the
// offending record and field rather than the generic top-level failure.
func flattenValidationError(verr *jsonschema.ValidationError) string {
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}

	loc := verr.InstanceLocation
	if loc == "" {
		loc = "/"
	}

	return fmt.Sprintf("at %q: %s", loc, verr.Message)
}
