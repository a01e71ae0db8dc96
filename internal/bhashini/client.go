package bhashini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/YadurajManu/bolonyay-server/internal/apperr"
	"github.com/YadurajManu/bolonyay-server/internal/config"
	"github.com/YadurajManu/bolonyay-server/internal/language"
	"github.com/YadurajManu/bolonyay-server/pkg/logger"
)

// defaultPipelineID selects the MeitY pipeline on the discovery service.
const defaultPipelineID = "64392f96daac500b55c543cd"

// ConfigCache stores discovery results keyed by (task, language) so
// repeat filings skip the discovery round trip.
type ConfigCache interface {
	Get(key string) (*PipelineConfig, bool)
	Set(key string, value *PipelineConfig) error
}

// Client is the two-step speech pipeline client: discover a model/service
// pair for a task, then run inference against it. No retries anywhere; a
// failed call surfaces immediately.
type Client interface {
	Transcribe(ctx context.Context, audio []byte, source language.Language) (*Transcript, error)
	DetectLanguage(ctx context.Context, audio []byte) (*Detection, error)
}

type client struct {
	log          *logger.Logger
	http         *resty.Client
	configURL    string
	inferenceURL string
	apiKey       string
	userID       string
	cache        ConfigCache
}

// NewClient builds a Bhashini client from configuration. cache may be nil
// to disable discovery caching.
func NewClient(cfg *config.Config, cache ConfigCache, log *logger.Logger) Client {
	httpClient := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.BhashiniTimeout)

	return &client{
		log:          log.With("service", "bhashini"),
		http:         httpClient,
		configURL:    cfg.BhashiniConfigURL,
		inferenceURL: cfg.BhashiniInferenceURL,
		apiKey:       cfg.BhashiniAPIKey,
		userID:       cfg.BhashiniUserID,
		cache:        cache,
	}
}

func cacheKey(taskType, sourceLanguage string) string {
	return fmt.Sprintf("pipeline:%s:%s", taskType, sourceLanguage)
}

// discover resolves the serviceId/modelId pair for a task and source
// language, consulting the cache first.
func (c *client) discover(ctx context.Context, taskType, sourceLanguage string) (*PipelineConfig, error) {
	key := cacheKey(taskType, sourceLanguage)
	if c.cache != nil {
		if pc, found := c.cache.Get(key); found {
			return pc, nil
		}
	}

	var req discoveryRequest
	task := discoveryTask{TaskType: taskType}
	task.Config.Language.SourceLanguage = sourceLanguage
	req.PipelineTasks = []discoveryTask{task}
	req.PipelineRequestConfig.PipelineID = defaultPipelineID

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("userID", c.userID).
		SetHeader("ulcaApiKey", c.apiKey).
		SetBody(&req).
		Post(c.configURL)
	if err != nil {
		return nil, fmt.Errorf("pipeline discovery request: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, apperr.NewAPIError(resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	var dr discoveryResponse
	if err := json.Unmarshal(resp.Body(), &dr); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidResponse, err)
	}

	if len(dr.PipelineResponseConfig) == 0 || len(dr.PipelineResponseConfig[0].Config) == 0 {
		return nil, fmt.Errorf("%w for task %s", apperr.ErrConfiguration, taskType)
	}

	entry := dr.PipelineResponseConfig[0].Config[0]
	pc := &PipelineConfig{ServiceID: entry.ServiceID, ModelID: entry.ModelID}
	if pc.ServiceID == "" || pc.ModelID == "" {
		return nil, fmt.Errorf("%w for task %s", apperr.ErrConfiguration, taskType)
	}

	if c.cache != nil {
		if err := c.cache.Set(key, pc); err != nil {
			c.log.Warn("Failed to cache pipeline config", "key", key, "error", err)
		}
	}

	c.log.Debug("Pipeline discovered",
		"task", taskType,
		"language", sourceLanguage,
		"serviceId", pc.ServiceID,
		"modelId", pc.ModelID,
	)

	return pc, nil
}

// infer submits base64 audio to the inference endpoint for one task.
func (c *client) infer(ctx context.Context, taskType, sourceLanguage string, pc *PipelineConfig, audio []byte) (*inferenceResponse, error) {
	var req inferenceRequest
	req.PipelineTasks = []inferenceTask{{
		TaskType: taskType,
		Config: inferenceTaskConfig{
			ServiceID: pc.ServiceID,
			ModelID:   pc.ModelID,
			Language:  languageConfig{SourceLanguage: sourceLanguage},
		},
	}}
	req.InputData.Audio = []audioContent{{
		AudioContent: base64.StdEncoding.EncodeToString(audio),
	}}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", c.apiKey).
		SetBody(&req).
		Post(c.inferenceURL)
	if err != nil {
		return nil, fmt.Errorf("pipeline inference request: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, apperr.NewAPIError(resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	var ir inferenceResponse
	if err := json.Unmarshal(resp.Body(), &ir); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidResponse, err)
	}

	return &ir, nil
}

// Transcribe converts speech to text. The transcript is looked up at
// pipelineResponse[0].output[0].source first, then at the flattened
// output[0].source.
func (c *client) Transcribe(ctx context.Context, audio []byte, source language.Language) (*Transcript, error) {
	code := source.BhashiniCode()

	pc, err := c.discover(ctx, TaskASR, code)
	if err != nil {
		return nil, err
	}

	ir, err := c.infer(ctx, TaskASR, code, pc, audio)
	if err != nil {
		return nil, err
	}

	if len(ir.PipelineResponse) > 0 && len(ir.PipelineResponse[0].Output) > 0 {
		if text := ir.PipelineResponse[0].Output[0].Source; text != "" {
			return &Transcript{Text: text, Path: PathPipelineResponse}, nil
		}
	}
	if len(ir.Output) > 0 {
		if text := ir.Output[0].Source; text != "" {
			return &Transcript{Text: text, Path: PathOutput}, nil
		}
	}

	return nil, apperr.ErrNoTranscript
}

// DetectLanguage identifies the spoken language of an audio clip. The
// prediction is looked up at pipelineResponse[0].output[0].langPrediction
// first, then at the flattened output[0].langPrediction.
func (c *client) DetectLanguage(ctx context.Context, audio []byte) (*Detection, error) {
	// ALD discovery does not know the source language yet; the service
	// treats hi as a wildcard for the detection pipeline.
	pc, err := c.discover(ctx, TaskALD, language.Hindi.BhashiniCode())
	if err != nil {
		return nil, err
	}

	ir, err := c.infer(ctx, TaskALD, language.Hindi.BhashiniCode(), pc, audio)
	if err != nil {
		return nil, err
	}

	if len(ir.PipelineResponse) > 0 && len(ir.PipelineResponse[0].Output) > 0 {
		preds := ir.PipelineResponse[0].Output[0].LangPrediction
		if len(preds) > 0 && preds[0].LangCode != "" {
			return &Detection{LangCode: preds[0].LangCode, Path: PathPipelineResponse}, nil
		}
	}
	if len(ir.Output) > 0 {
		preds := ir.Output[0].LangPrediction
		if len(preds) > 0 && preds[0].LangCode != "" {
			return &Detection{LangCode: preds[0].LangCode, Path: PathOutput}, nil
		}
	}

	return nil, apperr.ErrLanguageDetection
}
