package service

import (
	"context"
	"encoding/json"
	"fmt"

	"contract-redline-be/internal/dto"
	"contract-redline-be/internal/pkg/logger"
	"contract-redline-be/pkg/events"
	"contract-redline-be/pkg/redline"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// IContractService runs the clause-matching + grounding pipeline.
type IContractService interface {
	AnalyzeContract(ctx context.Context, req *dto.AnalyzeContractRequest) (*dto.AnalyzeContractResponse, error)
	MatchDocuments(ctx context.Context, req *dto.MatchDocumentsRequest) (*dto.MatchDocumentsResponse, error)
}

type contractService struct {
	matcher        *redline.Matcher
	classifier     *redline.Classifier
	generator      *redline.Generator
	personas       IPersonaService
	publisher      message.Publisher
	logger         logger.ILogger
	threshold      float64
	groundingRatio float64
}

func NewContractService(
	matcher *redline.Matcher,
	classifier *redline.Classifier,
	generator *redline.Generator,
	personas IPersonaService,
	publisher message.Publisher,
	sysLogger logger.ILogger,
	matchThreshold float64,
	groundingRatio float64,
) IContractService {
	if matchThreshold <= 0 {
		matchThreshold = redline.DefaultMatchThreshold
	}
	if groundingRatio <= 0 {
		groundingRatio = redline.GroundingThreshold
	}
	if sysLogger == nil {
		sysLogger = logger.NewNopLogger()
	}
	return &contractService{
		matcher:        matcher,
		classifier:     classifier,
		generator:      generator,
		personas:       personas,
		publisher:      publisher,
		logger:         sysLogger,
		threshold:      matchThreshold,
		groundingRatio: groundingRatio,
	}
}

// AnalyzeContract runs the full pipeline: extract → stitch → classify →
// generate deltas (bounded concurrency) → ground → patch. A failed clause
// never blocks the rest of the report; the only fatal condition is the
// generation capability being absent entirely.
func (s *contractService) AnalyzeContract(ctx context.Context, req *dto.AnalyzeContractRequest) (*dto.AnalyzeContractResponse, error) {
	runId := uuid.New()

	raw := redline.ExtractParagraphs(req.CounterpartyText)
	stitched := redline.StitchParagraphs(raw)

	queue, err := s.classifier.BuildQueue(ctx, stitched)
	if err != nil {
		return nil, fmt.Errorf("clause classification: %w", err)
	}
	s.logger.Info("contract", "clause queue built", map[string]interface{}{
		"run_id":     runId.String(),
		"paragraphs": len(stitched),
		"clauses":    len(queue),
	})

	personaName, instructions := s.personas.Resolve(req.Persona)

	records, err := s.generator.GenerateBatch(ctx, queue, instructions, req.Role)
	if err != nil {
		return nil, fmt.Errorf("delta generation: %w", err)
	}

	failures := 0
	diff := make([]redline.DeltaRecord, 0, len(records))
	for _, record := range records {
		record.Delta = redline.GroundWithThreshold(record.CpText, record.Delta, s.groundingRatio)
		if record.Status != redline.ParseOK {
			failures++
		}
		if s.reportable(record) {
			diff = append(diff, record)
		}
	}

	patched := redline.ApplyRedlines(stitched, diff)

	s.publishCompleted(ctx, runId, personaName, len(diff), failures)

	return &dto.AnalyzeContractResponse{
		RunId:        runId,
		Persona:      personaName,
		Diff:         diff,
		Patched:      patched,
		MatchCount:   len(diff),
		FailureCount: failures,
	}, nil
}

// reportable filters "no change, no problem" records out of the final
// report. Errored clauses stay in: the caller sees "no redline generated,
// see error note" instead of a silent gap.
func (s *contractService) reportable(record redline.DeltaRecord) bool {
	if record.Status != redline.ParseOK {
		return true
	}
	return record.RiskScore >= 2 || !record.Delta.IsEmpty()
}

// MatchDocuments runs the bipartite counterparty-vs-template matching on
// its own, without delta generation.
func (s *contractService) MatchDocuments(ctx context.Context, req *dto.MatchDocumentsRequest) (*dto.MatchDocumentsResponse, error) {
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.threshold
	}

	cpParagraphs := redline.ExtractParagraphs(req.CounterpartyText)
	tpParagraphs := redline.ExtractParagraphs(req.TemplateText)

	matches, err := s.matcher.PairwiseMatch(ctx, cpParagraphs, tpParagraphs, threshold)
	if err != nil {
		return nil, fmt.Errorf("pairwise match: %w", err)
	}
	return &dto.MatchDocumentsResponse{Matches: matches}, nil
}

func (s *contractService) publishCompleted(ctx context.Context, runId uuid.UUID, persona string, clauseCount, failureCount int) {
	if s.publisher == nil {
		return
	}
	event := events.NewAnalysisCompleted(runId.String(), persona, clauseCount, failureCount)
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	if err := s.publisher.Publish(events.TopicAnalysisCompleted, msg); err != nil {
		s.logger.Warn("contract", "failed to publish analysis event", map[string]interface{}{
			"run_id": runId.String(),
			"error":  err.Error(),
		})
	}
}
