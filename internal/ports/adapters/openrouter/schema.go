package openrouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrInvalidPlan = errors.New("openrouter: model output does not match plan schema")

// planSchema only pins the shape. Ranges are left to the planner, which
// clamps instead of rejecting.
const planSchema = `{
  "type": "object",
  "required": ["insertions"],
  "properties": {
    "insertions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["start_sec", "duration_sec", "broll_id"],
        "properties": {
          "start_sec": {"type": "number"},
          "duration_sec": {"type": "number"},
          "broll_id": {"type": "string"},
          "reason": {"type": "string"},
          "confidence": {"type": "number"}
        }
      }
    }
  }
}`

const planSchemaURL = "plan.schema.json"

var compiledPlanSchema = mustCompilePlanSchema()

func mustCompilePlanSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(planSchemaURL, strings.NewReader(planSchema)); err != nil {
		panic(fmt.Sprintf("openrouter: plan schema: %v", err))
	}
	return c.MustCompile(planSchemaURL)
}

func validatePlan(doc []byte) error {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if err := compiledPlanSchema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return nil
}
