package memory

import (
	"github.com/secmon-lab/caseline/pkg/domain/interfaces"
)

// Memory is an in-memory repository for development and tests
type Memory struct {
	caseRepo *caseRepository
	event    *timelineEventRepository
	category *categoryRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		caseRepo: newCaseRepository(),
		event:    newTimelineEventRepository(),
		category: newCategoryRepository(),
	}
}

func (m *Memory) Case() interfaces.CaseRepository {
	return m.caseRepo
}

func (m *Memory) TimelineEvent() interfaces.TimelineEventRepository {
	return m.event
}

func (m *Memory) Category() interfaces.CategoryRepository {
	return m.category
}

func (m *Memory) Close() error {
	return nil
}
