package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/premierlux/premierlux-backend/pkg/config"
	"github.com/premierlux/premierlux-backend/pkg/logger"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

const advisorySystemPrompt = `You are an inventory advisor for a multi-branch retail business.
You are given a JSON summary of current stock levels, alerts and reorder suggestions.
Answer the user's question concisely and concretely, citing item names, branches and quantities from the data.
If the data does not answer the question, say so.`

// AdvisoryService answers free-form stock questions. When the model is
// unavailable the service degrades to a rule-based answer assembled from
// the same data, so the endpoint never fails because of the model.
type AdvisoryService struct {
	model        llms.Model
	modelName    string
	ledger       *LedgerService
	replenishing *ReplenishmentService
	alerts       *AlertService
	logger       *logger.Logger
}

// NewAdvisoryService creates a new advisory service. A missing API key is
// not an error; it just pins the service to rule-based answers.
func NewAdvisoryService(
	cfg *config.AdvisoryConfig,
	ledger *LedgerService,
	replenishing *ReplenishmentService,
	alerts *AlertService,
	log *logger.Logger,
) *AdvisoryService {
	s := &AdvisoryService{
		modelName:    cfg.Model,
		ledger:       ledger,
		replenishing: replenishing,
		alerts:       alerts,
		logger:       log,
	}

	if cfg.APIKey != "" {
		model, err := openai.New(
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize advisory model, falling back to rule-based answers")
		} else {
			s.model = model
		}
	}

	return s
}

// AdvisoryAnswer is one advisory reply.
type AdvisoryAnswer struct {
	Answer    string `json:"answer"`
	Source    string `json:"source"`
	ModelUsed string `json:"model_used,omitempty"`
}

// Answer sources
const (
	SourceModel = "model"
	SourceRules = "rules"
)

// Ask answers a stock question against current data.
func (s *AdvisoryService) Ask(ctx context.Context, question string) (*AdvisoryAnswer, error) {
	summary, err := s.buildContext(ctx)
	if err != nil {
		return nil, err
	}

	if s.model != nil {
		answer, err := s.askModel(ctx, question, summary)
		if err == nil {
			return &AdvisoryAnswer{Answer: answer, Source: SourceModel, ModelUsed: s.modelName}, nil
		}
		s.logger.Warn().Err(err).Msg("advisory model call failed, using rule-based answer")
	}

	return &AdvisoryAnswer{Answer: s.ruleBasedAnswer(question, summary), Source: SourceRules}, nil
}

// advisoryContext is the data handed to the model and the rule engine.
type advisoryContext struct {
	LowStock    []string            `json:"low_stock"`
	Alerts      []string            `json:"alerts"`
	Suggestions []ReplenishmentPlan `json:"suggestions"`
}

func (s *AdvisoryService) buildContext(ctx context.Context) (*advisoryContext, error) {
	lowStock, err := s.ledger.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}

	alerts, err := s.alerts.Active(ctx)
	if err != nil {
		return nil, err
	}

	suggestions, err := s.replenishing.Suggestions(ctx)
	if err != nil {
		return nil, err
	}

	summary := &advisoryContext{Suggestions: suggestions}
	for _, item := range lowStock {
		summary.LowStock = append(summary.LowStock,
			fmt.Sprintf("%s at %s: %d left (reorder at %d)", item.Name, item.Branch, item.Quantity, item.ReorderLevel))
	}
	for _, a := range alerts {
		summary.Alerts = append(summary.Alerts, a.Message)
	}

	return summary, nil
}

func (s *AdvisoryService) askModel(ctx context.Context, question string, summary *advisoryContext) (string, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return "", err
	}

	response, err := s.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, advisorySystemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, fmt.Sprintf("Data:\n%s\n\nQuestion: %s", data, question)),
	}, llms.WithTemperature(0.2))
	if err != nil {
		return "", err
	}

	if response == nil || len(response.Choices) == 0 {
		return "", fmt.Errorf("empty response from advisory model")
	}

	return response.Choices[0].Content, nil
}

// ruleBasedAnswer matches the question against known topics and renders a
// plain-text answer from the summary.
func (s *AdvisoryService) ruleBasedAnswer(question string, summary *advisoryContext) string {
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "low stock") || strings.Contains(q, "running low") || strings.Contains(q, "out of stock"):
		if len(summary.LowStock) == 0 {
			return "No items are currently low on stock."
		}
		return "Items low on stock:\n- " + strings.Join(summary.LowStock, "\n- ")

	case strings.Contains(q, "reorder") || strings.Contains(q, "order") || strings.Contains(q, "replenish"):
		if len(summary.Suggestions) == 0 {
			return "No items currently need replenishment."
		}
		lines := make([]string, 0, len(summary.Suggestions))
		for _, p := range summary.Suggestions {
			lines = append(lines, fmt.Sprintf("%s at %s: order %d (risk %s)", p.Name, p.Branch, p.SuggestedQuantity, p.RiskLevel))
		}
		return "Suggested reorders:\n- " + strings.Join(lines, "\n- ")

	case strings.Contains(q, "alert") || strings.Contains(q, "expir"):
		if len(summary.Alerts) == 0 {
			return "No active alerts."
		}
		return "Active alerts:\n- " + strings.Join(summary.Alerts, "\n- ")

	default:
		return fmt.Sprintf(
			"I can report on low stock, reorder suggestions and alerts. Currently: %d items low on stock, %d reorder suggestions, %d active alerts.",
			len(summary.LowStock), len(summary.Suggestions), len(summary.Alerts))
	}
}
