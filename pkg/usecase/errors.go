package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
)

// Sentinel errors for use case layer
var (
	ErrCaseNotFound     = goerr.New("case not found", goerr.T(model.TagNotFound))
	ErrEventNotFound    = goerr.New("timeline event not found", goerr.T(model.TagNotFound))
	ErrCategoryNotFound = goerr.New("category not found", goerr.T(model.TagNotFound))
)

// Context keys for error values
const (
	CaseIDKey  = "case_id"
	EventIDKey = "event_id"
)
