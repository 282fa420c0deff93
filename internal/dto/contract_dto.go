package dto

import (
	"contract-redline-be/pkg/redline"

	"github.com/google/uuid"
)

type AnalyzeContractRequest struct {
	CounterpartyText string `json:"counterparty_text" validate:"required"`
	Persona          string `json:"persona"`
	Role             string `json:"role"`
}

type AnalyzeContractResponse struct {
	RunId        uuid.UUID             `json:"run_id"`
	Persona      string                `json:"persona"`
	Diff         []redline.DeltaRecord `json:"diff"`
	Patched      redline.PatchResult   `json:"patched"`
	MatchCount   int                   `json:"match_count"`
	FailureCount int                   `json:"failure_count"`
}

type MatchDocumentsRequest struct {
	CounterpartyText string  `json:"counterparty_text" validate:"required"`
	TemplateText     string  `json:"template_text"`
	Threshold        float64 `json:"threshold"`
}

type MatchDocumentsResponse struct {
	Matches []redline.MatchRecord `json:"matches"`
}

type UpsertPersonaRequest struct {
	Name         string `json:"name" validate:"required"`
	Instructions string `json:"instructions" validate:"required"`
}

type PersonaResponse struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}
