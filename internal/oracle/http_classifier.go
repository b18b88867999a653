package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/webclient"
)

// HTTPClassifier asks a remote model server for class probabilities.
//
// Request:  POST <endpoint> {"text": "..."}
// Response: {"probabilities": {"scam": 0.93, "legitimate": 0.07}}
type HTTPClassifier struct {
	endpoint string
	client   webclient.WebClient
	logger   logging.Logger
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Probabilities map[Class]float64 `json:"probabilities"`
	Model         string            `json:"model,omitempty"`
}

func NewHTTPClassifier(endpoint string, client webclient.WebClient, logger logging.Logger) (*HTTPClassifier, error) {
	if endpoint == "" {
		return nil, errors.New("oracle: http classifier needs an endpoint")
	}
	if client == nil {
		return nil, errors.New("oracle: http classifier needs a web client")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &HTTPClassifier{
		endpoint: endpoint,
		client:   client,
		logger:   logger.With(logging.F("oracle", "http-classifier")),
	}, nil
}

func (h *HTTPClassifier) PredictProbabilities(ctx context.Context, text string) ([]ClassProbability, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrUnavailable, err)
	}

	resp, err := h.client.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     h.endpoint,
		Headers: http.Header{"Content-Type": []string{"application/json"}, "Accept": []string{"application/json"}},
		Body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: model server returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var out classifyResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}
	scam, okScam := out.Probabilities[ClassScam]
	legit, okLegit := out.Probabilities[ClassLegitimate]
	if !okScam || !okLegit {
		return nil, fmt.Errorf("%w: response lacks scam/legitimate probabilities", ErrUnavailable)
	}

	h.logger.Debug("remote classification",
		logging.F("model", out.Model),
		logging.F("scam", scam))

	return []ClassProbability{
		{Class: ClassScam, Probability: scam},
		{Class: ClassLegitimate, Probability: legit},
	}, nil
}
