package memory

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = goerr.Wrap(types.ErrNotFound, "memory: not found")
