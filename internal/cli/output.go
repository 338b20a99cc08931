package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/RichardKnop/docplan/internal/planner"
)

// Response is the JSON envelope written when --format=json.
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// PlanOutput is the JSON rendering of a compiled query.
type PlanOutput struct {
	Scan     string   `json:"scan"`
	Filters  []string `json:"filters,omitempty"`
	Sort     string   `json:"sort,omitempty"`
	Sampling []string `json:"sampling,omitempty"`
}

func newPlanOutput(result planner.Result) PlanOutput {
	out := PlanOutput{Scan: result.Plan.Scan.String()}
	for _, aFilter := range result.Plan.Filters {
		out.Filters = append(out.Filters, aFilter.String())
	}
	if result.Plan.Sort != nil {
		out.Sort = result.Plan.Sort.String()
	}
	for _, anOperation := range result.Sampling {
		out.Sampling = append(out.Sampling, anOperation.String())
	}
	return out
}

type formatter struct {
	format string
	w      io.Writer
}

func (f formatter) success(data any) error {
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	return enc.Encode(Response{Status: "ok", Data: data})
}

// failure reports err in the JSON envelope and returns it so the command
// still exits non-zero. Text output leaves printing to the caller.
func (f formatter) failure(err error) error {
	if f.format != "json" {
		return err
	}
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	if encodeErr := enc.Encode(Response{Status: "error", Error: err.Error()}); encodeErr != nil {
		return fmt.Errorf("%w (encoding error response: %v)", err, encodeErr)
	}
	return err
}
