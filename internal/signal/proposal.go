package signal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Proposal is the raw trade suggestion emitted by an upstream analysis agent.
// It is validated against proposalSchema before anything downstream sees it:
// a payload that fails validation is rejected outright, never classified or
// executed.
type Proposal struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"company_name,omitempty"`
	SuggestedQuantity int64   `json:"suggested_quantity"`
	SuggestedAmount   float64 `json:"suggested_amount"`
	TargetPrice       float64 `json:"target_price,omitempty"`
	StopLoss          float64 `json:"stop_loss,omitempty"`
	CurrentPrice      float64 `json:"current_price"`
	Confidence        float64 `json:"confidence"`
	QuantScore        float64 `json:"quant_score"`
	FundamentalScore  float64 `json:"fundamental_score"`
	NewsScore         float64 `json:"news_score"`
	AllocationPercent float64 `json:"allocation_percent"`
	TriggerSource     string  `json:"trigger_source"`
	Reason            string  `json:"reason,omitempty"`
}

const proposalSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["symbol", "suggested_amount", "current_price", "confidence", "quant_score", "fundamental_score", "trigger_source"],
	"properties": {
		"symbol": {"type": "string", "minLength": 1},
		"company_name": {"type": "string"},
		"suggested_quantity": {"type": "integer"},
		"suggested_amount": {"type": "number", "minimum": 0},
		"target_price": {"type": "number", "minimum": 0},
		"stop_loss": {"type": "number", "minimum": 0},
		"current_price": {"type": "number", "exclusiveMinimum": 0},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"quant_score": {"type": "number", "minimum": 1, "maximum": 10},
		"fundamental_score": {"type": "number", "minimum": 1, "maximum": 10},
		"news_score": {"type": "number", "minimum": 0, "maximum": 10},
		"allocation_percent": {"type": "number"},
		"trigger_source": {"type": "string", "minLength": 1},
		"reason": {"type": "string"}
	}
}`

var compiledProposalSchema = jsonschema.MustCompileString("proposal.json", proposalSchema)

// ParseProposal validates raw agent output against the proposal schema and
// decodes it. Validation errors are returned verbatim so the caller can
// surface which constraint failed.
func ParseProposal(raw []byte) (Proposal, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Proposal{}, fmt.Errorf("proposal is not valid JSON: %w", err)
	}
	if err := compiledProposalSchema.Validate(doc); err != nil {
		return Proposal{}, fmt.Errorf("proposal rejected by schema: %w", err)
	}
	var p Proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return Proposal{}, fmt.Errorf("decoding proposal failed: %w", err)
	}
	p.Symbol = strings.ToUpper(strings.TrimSpace(p.Symbol))
	p.TriggerSource = strings.ToLower(strings.TrimSpace(p.TriggerSource))
	return p, nil
}
