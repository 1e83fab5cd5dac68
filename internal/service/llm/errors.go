package llm

import (
	"errors"
	"fmt"
)

// Failure messages shared by the facade and the adapters
const (
	MsgAPIKeyRequired         = "API key is required"
	MsgEndpointRequired       = "API endpoint is required"
	MsgCustomEndpointRequired = "API endpoint is required for custom API"
	MsgUnknownError           = "An unknown error occurred"
)

// ErrUnknownProvider is matched by every UnknownProviderError
var ErrUnknownProvider = errors.New("unknown provider")

// UnknownProviderError reports a provider identifier outside the supported set
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider: %q", e.Provider)
}

func (e *UnknownProviderError) Is(target error) bool {
	return target == ErrUnknownProvider
}
