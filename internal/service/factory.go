package service

import (
	"loomsales.app/copilot/common/embedding"
	"loomsales.app/copilot/internal/queue"
	"loomsales.app/copilot/internal/store"
)

type Services struct {
	stores   *store.Stores
	pipeline Pipeline
	embedder embedding.Embedder
	events   queue.Producer
}

func NewServices(stores *store.Stores, pipeline Pipeline, embedder embedding.Embedder, events queue.Producer) *Services {
	return &Services{
		stores:   stores,
		pipeline: pipeline,
		embedder: embedder,
		events:   events,
	}
}

func (s *Services) Crm() CrmService {
	return NewCrmService(s.stores.Crm())
}

func (s *Services) Surveys() SurveyService {
	return NewSurveyService(s.stores.Surveys())
}

func (s *Services) Knowledge() KnowledgeService {
	return NewKnowledgeService(s.stores.Knowledge())
}

func (s *Services) Copilot() CopilotService {
	return NewCopilotService(s.pipeline, s.embedder, s.events)
}
