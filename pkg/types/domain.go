package types

// Model represents a fastText model file discovered on disk.
type Model struct {
	// Stable identifier for the model.
	// example: lid.176.ftz
	ID string `json:"id" example:"lid.176.ftz"`
	// Human-friendly name.
	// example: lid.176
	Name string `json:"name" example:"lid.176"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/fasttext/lid.176.ftz
	Path string `json:"path" example:"/home/user/models/fasttext/lid.176.ftz"`
	// File size in bytes.
	// example: 938013
	SizeBytes int64 `json:"size_bytes" example:"938013"`
	// True when the file is a quantized (.ftz) model.
	// example: true
	Quantized bool `json:"quantized,omitempty" example:"true"`
}

// Prediction is one label with its probability.
type Prediction struct {
	// Label including its prefix.
	// example: __label__en
	Label string `json:"label" example:"__label__en"`
	// Linear probability in [0,1].
	// example: 0.93
	Probability float64 `json:"probability" example:"0.93"`
	// Natural-log probability as reported by the engine.
	// example: -0.072
	LogProb float32 `json:"log_prob" example:"-0.072"`
}

// Hyperparameters mirrors the arguments a model was trained with.
type Hyperparameters struct {
	LR                float64 `json:"lr" example:"0.05"`
	LRUpdateRate      int     `json:"lr_update_rate" example:"100"`
	Dim               int     `json:"dim" example:"100"`
	WS                int     `json:"ws" example:"5"`
	Epoch             int     `json:"epoch" example:"5"`
	MinCount          int     `json:"min_count" example:"1"`
	MinCountLabel     int     `json:"min_count_label" example:"0"`
	Neg               int     `json:"neg" example:"5"`
	WordNgrams        int     `json:"word_ngrams" example:"1"`
	Loss              string  `json:"loss" example:"softmax"`
	Model             string  `json:"model" example:"sup"`
	Bucket            int     `json:"bucket" example:"2000000"`
	Minn              int     `json:"minn" example:"0"`
	Maxn              int     `json:"maxn" example:"0"`
	T                 float64 `json:"t" example:"0.0001"`
	Label             string  `json:"label" example:"__label__"`
	PretrainedVectors string  `json:"pretrained_vectors" example:""`
}
