// Package validation checks request bodies and websocket messages against
// embedded JSON schemas and reports every violation as "/path: message".
package validation

import (
	"bytes"
	"embed"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Schema names one embedded schema file.
type Schema string

const (
	AgentChart      Schema = "agent_chart.json"
	AgentReference  Schema = "agent_reference.json"
	AgentContext    Schema = "agent_context.json"
	AgentSummary    Schema = "agent_summary.json"
	SummarySweep    Schema = "summary_sweep.json"
	Orchestrator    Schema = "orchestrator.json"
	TranscriptChunk Schema = "transcript_chunk.json"
	ClientMessage   Schema = "client_message.json"
)

var all = []Schema{
	AgentChart, AgentReference, AgentContext, AgentSummary,
	SummarySweep, Orchestrator, TranscriptChunk, ClientMessage,
}

const baseURL = "https://echolens.dev/schemas/"

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	defaultPrinter = message.NewPrinter(language.English)
	compiled       = mustCompile()
)

func mustCompile() map[Schema]*jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	for _, name := range all {
		raw, err := schemaFS.ReadFile("schemas/" + string(name))
		if err != nil {
			panic(fmt.Sprintf("failed to read embedded %s: %v", name, err))
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
		}
		if err := compiler.AddResource(baseURL+string(name), doc); err != nil {
			panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
		}
	}

	out := make(map[Schema]*jsonschema.Schema, len(all))
	for _, name := range all {
		sch, err := compiler.Compile(baseURL + string(name))
		if err != nil {
			panic(fmt.Sprintf("failed to compile %s: %v", name, err))
		}
		out[name] = sch
	}
	return out
}

// Validate returns nil when data is JSON that satisfies the schema, and the
// list of violations otherwise. Unparseable JSON yields a single entry.
func Validate(name Schema, data []byte) []string {
	sch, ok := compiled[name]
	if !ok {
		return []string{fmt.Sprintf("unknown schema %q", name)}
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return []string{fmt.Sprintf("/: invalid JSON: %v", err)}
	}

	return validateAgainstSchema(sch, instance)
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
