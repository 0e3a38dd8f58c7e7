package types

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available models.
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// LoadRequest selects a model for POST /model/load. Exactly one of ID or
// Path is required; ID is resolved against the registry. POST
// /model/load-default only reads Replace.
type LoadRequest struct {
	// Registry id of the model.
	// example: lid.176.ftz
	ID string `json:"id,omitempty" example:"lid.176.ftz"`
	// Filesystem path of the model.
	// example: /home/user/models/fasttext/lid.176.ftz
	Path string `json:"path,omitempty" example:"/home/user/models/fasttext/lid.176.ftz"`
	// Unload a loaded model first instead of failing with 409.
	// example: false
	Replace bool `json:"replace,omitempty" example:"false"`
}

// PredictRequest is the payload of POST /predict.
type PredictRequest struct {
	// Text to classify.
	// example: Which baking dish is best to bake a banana bread ?
	Text string `json:"text" example:"Which baking dish is best to bake a banana bread ?"`
	// Maximum number of labels; defaults to 1 when omitted. Values below 1
	// are rejected.
	// example: 3
	K *int `json:"k,omitempty" example:"3"`
	// Minimum probability of returned labels.
	// example: 0.1
	Threshold float32 `json:"threshold,omitempty" example:"0.1"`
}

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	// Predictions ordered by descending probability. Empty when nothing
	// passes the threshold.
	Predictions []Prediction `json:"predictions"`
	// Best label, or "und" when Predictions is empty.
	// example: __label__baking
	Label string `json:"label" example:"__label__baking"`
}

// VectorRequest is the payload of POST /vectors/{word,sentence,subword}.
type VectorRequest struct {
	// Word, sentence or character n-gram to embed.
	// example: banana
	Text string `json:"text" example:"banana"`
}

// VectorResponse carries one embedding.
type VectorResponse struct {
	// Input echoed back.
	// example: banana
	Text string `json:"text" example:"banana"`
	// Vector of length dim.
	Vector []float32 `json:"vector"`
	// Dimension of the model.
	// example: 100
	Dim int `json:"dim" example:"100"`
}

// TestRequest is the payload of POST /test.
type TestRequest struct {
	// Path of a labelled evaluation file.
	// example: /data/cooking.valid
	Path string `json:"path" example:"/data/cooking.valid"`
	// Precision/recall cut-off; defaults to 1 when omitted. Values below 1
	// are rejected.
	// example: 1
	K *int `json:"k,omitempty" example:"1"`
}

// TestResponse carries the engine's own evaluation report.
type TestResponse struct {
	// Raw metrics output of the engine.
	// example: N	3000\nP@1	0.587\nR@1	0.254
	Report string `json:"report" example:"N\t3000\nP@1\t0.587\nR@1\t0.254"`
}

// TrainRequest is the payload of POST /train. Either Args (verbatim argument
// list, mode first) or Mode plus Flags must be set.
type TrainRequest struct {
	// Raw argument list without the program name.
	// example: ["supervised","-input","cooking.train","-output","model_cooking"]
	Args []string `json:"args,omitempty" example:"[\"supervised\",\"-input\",\"cooking.train\",\"-output\",\"model_cooking\"]"`
	// Training mode.
	// example: supervised
	Mode string `json:"mode,omitempty" example:"supervised"`
	// Flags rendered as -name value.
	Flags map[string]string `json:"flags,omitempty"`
	// Load the produced model once training succeeds.
	// example: false
	Load bool `json:"load,omitempty" example:"false"`
}

// TrainResponse is returned by POST /train.
type TrainResponse struct {
	// Identifier of the training operation (also present in events).
	// example: 8b4a7c3e-2f50-4a55-9a53-0a6d9bbf0c1b
	OperationID string `json:"operation_id" example:"8b4a7c3e-2f50-4a55-9a53-0a6d9bbf0c1b"`
	// Argument list passed to the engine, including the program name.
	Argv []string `json:"argv"`
	// Path of the model that was loaded, when Load was requested.
	ModelPath string `json:"model_path,omitempty"`
}

// ModelInfo describes the loaded model for GET /model/info.
type ModelInfo struct {
	// Path of the loaded model.
	Path string `json:"path"`
	// True when the bundled default model is loaded.
	Bundled bool `json:"bundled"`
	// Vocabulary size.
	// example: 40
	NWords int `json:"nwords" example:"40"`
	// Number of labels.
	// example: 4
	NLabels int `json:"nlabels" example:"4"`
	// Training arguments.
	Args Hyperparameters `json:"args"`
}

// StringsResponse wraps GET /model/words and GET /model/labels.
type StringsResponse struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Lifecycle state: unloaded, loaded or error.
	// example: loaded
	State string `json:"state" example:"loaded"`
	// Engine implementation in use (cli or native).
	// example: cli
	Engine string `json:"engine" example:"cli"`
	// Path of the loaded model, if any.
	ModelPath string `json:"model_path,omitempty"`
	// Registry id of the loaded model, if it came from the registry.
	ModelID string `json:"model_id,omitempty"`
	// True when the bundled default model is loaded.
	Bundled bool `json:"bundled"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of model loads.
	// example: 12
	LoadsTotal uint64 `json:"loads_total" example:"12"`
	// Total number of model unloads.
	// example: 11
	UnloadsTotal uint64 `json:"unloads_total" example:"11"`
	// Total number of training commands run.
	// example: 2
	TrainsTotal uint64 `json:"trains_total" example:"2"`
	// Whether the loaded file is watched for changes.
	// example: true
	Watching bool `json:"watching" example:"true"`
}
