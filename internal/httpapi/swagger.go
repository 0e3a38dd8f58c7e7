//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// openAPITemplate is the hand-maintained API description served at
// /swagger/doc.json. Schemas mirror pkg/types.
const openAPITemplate = `{
  "swagger": "2.0",
  "info": {"title": "{{.Title}}", "description": "{{escape .Description}}", "version": "{{.Version}}"},
  "basePath": "{{.BasePath}}",
  "schemes": {{ marshal .Schemes }},
  "paths": {
    "/healthz": {"get": {"summary": "Liveness probe", "responses": {"200": {"description": "ok"}}}},
    "/readyz": {"get": {"summary": "Ready when a model is loaded", "responses": {"200": {"description": "ready"}, "503": {"description": "no model loaded"}}}},
    "/status": {"get": {"summary": "Session status", "responses": {"200": {"description": "status", "schema": {"$ref": "#/definitions/StatusResponse"}}}}},
    "/models": {"get": {"summary": "Models found in the models directory", "responses": {"200": {"description": "models"}}}},
    "/model/info": {"get": {"summary": "Loaded model hyperparameters and sizes", "responses": {"200": {"description": "info"}, "409": {"description": "no model loaded"}}}},
    "/model/words": {"get": {"summary": "Vocabulary", "responses": {"200": {"description": "words"}, "409": {"description": "no model loaded"}}}},
    "/model/labels": {"get": {"summary": "Labels", "responses": {"200": {"description": "labels"}, "409": {"description": "no model loaded"}}}},
    "/model/load": {"post": {"summary": "Load a model by registry id or path", "parameters": [{"in": "body", "name": "body", "schema": {"$ref": "#/definitions/LoadRequest"}}], "responses": {"200": {"description": "status"}, "400": {"description": "incompatible format"}, "404": {"description": "file not found"}, "409": {"description": "already loaded"}, "422": {"description": "initialization failure"}}}},
    "/model/load-default": {"post": {"summary": "Load the bundled language-identification model", "responses": {"200": {"description": "status"}, "409": {"description": "already loaded"}}}},
    "/model/unload": {"post": {"summary": "Unload the model", "responses": {"200": {"description": "status"}}}},
    "/predict": {"post": {"summary": "Top-k labels with probabilities", "parameters": [{"in": "body", "name": "body", "schema": {"$ref": "#/definitions/PredictRequest"}}], "responses": {"200": {"description": "predictions"}, "400": {"description": "invalid k"}, "409": {"description": "no model loaded"}}}},
    "/vectors/word": {"post": {"summary": "Word vector", "responses": {"200": {"description": "vector"}}}},
    "/vectors/sentence": {"post": {"summary": "Sentence vector", "responses": {"200": {"description": "vector"}}}},
    "/vectors/subword": {"post": {"summary": "Subword vector", "responses": {"200": {"description": "vector"}}}},
    "/test": {"post": {"summary": "Evaluate on a labelled file", "responses": {"200": {"description": "report"}}}},
    "/train": {"post": {"summary": "Run a fastText training command", "responses": {"200": {"description": "operation"}, "429": {"description": "rate limited or busy"}}}}
  },
  "definitions": {
    "LoadRequest": {"type": "object", "properties": {"id": {"type": "string"}, "path": {"type": "string"}, "replace": {"type": "boolean"}}},
    "PredictRequest": {"type": "object", "properties": {"text": {"type": "string"}, "k": {"type": "integer"}, "threshold": {"type": "number"}}},
    "StatusResponse": {"type": "object", "properties": {"state": {"type": "string"}, "engine": {"type": "string"}, "model_path": {"type": "string"}, "bundled": {"type": "boolean"}}}
  }
}`

// SwaggerInfo describes the API for swag.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "ftserve API",
	Description:      "HTTP API for fastText model lifecycle and inference.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  openAPITemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
