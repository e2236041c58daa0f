package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Output schemas for the five task units. Validation happens right
// after parsing so unvalidated data never crosses the unit boundary.

const stressSchemaJSON = `{
  "type": "object",
  "required": ["stressed_detected"],
  "properties": {
    "stressed_detected": {"type": "boolean"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`

const sentimentSchemaJSON = `{
  "type": "object",
  "required": ["sentiment_counts"],
  "properties": {
    "sentiment_counts": {
      "type": "object",
      "required": ["positive", "negative"],
      "properties": {
        "positive": {"type": "integer", "minimum": 0},
        "negative": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

const stressorSchemaJSON = `{
  "type": "object",
  "required": ["top_stressors"],
  "properties": {
    "top_stressors": {"type": "string"}
  }
}`

const blockerSchemaJSON = `{
  "type": "object",
  "required": ["common_blockers"],
  "properties": {
    "common_blockers": {"type": "string"}
  }
}`

const severitySchemaJSON = `{
  "type": "object",
  "required": ["is_severe_case"],
  "properties": {
    "is_severe_case": {"type": "boolean"},
    "severity_indicators": {
      "type": ["array", "null"],
      "items": {"type": "string"}
    }
  }
}`

var (
	stressSchema    = mustCompileSchema(stressSchemaJSON, "stress.schema.json")
	sentimentSchema = mustCompileSchema(sentimentSchemaJSON, "sentiment.schema.json")
	stressorSchema  = mustCompileSchema(stressorSchemaJSON, "stressor.schema.json")
	blockerSchema   = mustCompileSchema(blockerSchemaJSON, "blocker.schema.json")
	severitySchema  = mustCompileSchema(severitySchemaJSON, "severity.schema.json")
)

func mustCompileSchema(raw, name string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}
