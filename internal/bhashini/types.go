package bhashini

// Task types understood by the pipeline service.
const (
	TaskASR = "asr"
	TaskALD = "ald"
)

// PipelineConfig is the model/service pair resolved by pipeline discovery
// for one (task, language) combination.
type PipelineConfig struct {
	ServiceID string `json:"serviceId"`
	ModelID   string `json:"modelId"`
}

// ResponsePath names which of the documented response shapes carried the
// payload, so callers and tests can assert shape coverage.
type ResponsePath string

const (
	PathPipelineResponse ResponsePath = "pipelineResponse"
	PathOutput           ResponsePath = "output"
)

// Transcript is a successful ASR result.
type Transcript struct {
	Text string
	Path ResponsePath
}

// Detection is a successful audio language detection result. LangCode is
// the raw label from the model; callers normalize it with
// language.Validate.
type Detection struct {
	LangCode string
	Path     ResponsePath
}

// ---- wire types ----

type languageConfig struct {
	SourceLanguage string `json:"sourceLanguage"`
}

type discoveryTask struct {
	TaskType string `json:"taskType"`
	Config   struct {
		Language languageConfig `json:"language"`
	} `json:"config"`
}

type discoveryRequest struct {
	PipelineTasks         []discoveryTask `json:"pipelineTasks"`
	PipelineRequestConfig struct {
		PipelineID string `json:"pipelineId"`
	} `json:"pipelineRequestConfig"`
}

type discoveryResponse struct {
	PipelineResponseConfig []struct {
		TaskType string `json:"taskType"`
		Config   []struct {
			ServiceID string         `json:"serviceId"`
			ModelID   string         `json:"modelId"`
			Language  languageConfig `json:"language"`
		} `json:"config"`
	} `json:"pipelineResponseConfig"`
}

type inferenceTaskConfig struct {
	ServiceID string         `json:"serviceId"`
	ModelID   string         `json:"modelId"`
	Language  languageConfig `json:"language"`
}

type inferenceTask struct {
	TaskType string              `json:"taskType"`
	Config   inferenceTaskConfig `json:"config"`
}

type audioContent struct {
	AudioContent string `json:"audioContent"`
}

type inferenceRequest struct {
	PipelineTasks []inferenceTask `json:"pipelineTasks"`
	InputData     struct {
		Audio []audioContent `json:"audio"`
	} `json:"inputData"`
}

type langPrediction struct {
	LangCode string `json:"langCode"`
}

type outputItem struct {
	Source         string           `json:"source"`
	LangPrediction []langPrediction `json:"langPrediction"`
}

type taskResponse struct {
	TaskType string       `json:"taskType"`
	Output   []outputItem `json:"output"`
}

// inferenceResponse covers both documented shapes: the nested
// pipelineResponse array and the flattened top-level output array.
type inferenceResponse struct {
	PipelineResponse []taskResponse `json:"pipelineResponse"`
	Output           []outputItem   `json:"output"`
}
