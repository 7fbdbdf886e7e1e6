package firestore

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
)

// ErrNotFound is returned when the requested document does not exist
var ErrNotFound = goerr.New("not found", goerr.T(model.TagNotFound))
