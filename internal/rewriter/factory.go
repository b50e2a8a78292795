package rewriter

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProviderGateway = "gateway"
	ProviderOpenAI  = "openai"
	ProviderMock    = "mock"
)

// Options selects and configures an oracle backend.
type Options struct {
	Provider string
	URL      string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// NewOracle builds the backend named by opts.Provider.
func NewOracle(opts Options) (Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderGateway:
		return NewGateway(opts.URL, opts.APIKey, opts.Model, opts.Timeout)
	case ProviderOpenAI:
		return NewOpenAI(opts.URL, opts.APIKey, opts.Model, opts.Timeout)
	case ProviderMock:
		return Mock{}, nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", opts.Provider)
	}
}
