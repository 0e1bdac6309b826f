// Package docs registers the OpenAPI description of the fisbench API with swag.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/analyze": {"post": {"tags": ["analyses"], "summary": "Analyze a receipt", "consumes": ["multipart/form-data"], "produces": ["application/json"], "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}, {"type": "string", "name": "providers", "in": "formData"}, {"type": "string", "name": "notes", "in": "formData"}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "413": {"description": "Payload Too Large"}}}},
        "/analyses": {"get": {"tags": ["analyses"], "summary": "List analyses", "parameters": [{"type": "integer", "name": "offset", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/analyses/{id}": {"get": {"tags": ["analyses"], "summary": "Get an analysis", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/analyses/{id}/evaluate": {"post": {"tags": ["analyses"], "summary": "Evaluate an analysis", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/accounting/normalize": {"post": {"tags": ["accounting"], "summary": "Normalize a raw accounting object", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/prompts": {"get": {"tags": ["prompts"], "summary": "Current prompt of every provider", "responses": {"200": {"description": "OK"}}}},
        "/prompts/{provider}": {
            "get": {"tags": ["prompts"], "summary": "Current prompt of a provider", "parameters": [{"type": "string", "name": "provider", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["prompts"], "summary": "Save a new prompt version", "parameters": [{"type": "string", "name": "provider", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "Created"}}}
        },
        "/prompts/{provider}/history": {"get": {"tags": ["prompts"], "summary": "Prompt history, newest first", "parameters": [{"type": "string", "name": "provider", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/prompts/{provider}/versions": {"get": {"tags": ["prompts"], "summary": "Prompt version numbers", "parameters": [{"type": "string", "name": "provider", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/prompts/{provider}/versions/{version}": {
            "get": {"tags": ["prompts"], "summary": "One prompt version", "parameters": [{"type": "string", "name": "provider", "in": "path", "required": true}, {"type": "integer", "name": "version", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["prompts"], "summary": "Delete a prompt version", "parameters": [{"type": "string", "name": "provider", "in": "path", "required": true}, {"type": "integer", "name": "version", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/prompts/{provider}/restore/{version}": {"post": {"tags": ["prompts"], "summary": "Restore an old prompt version", "parameters": [{"type": "string", "name": "provider", "in": "path", "required": true}, {"type": "integer", "name": "version", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}},
        "/prompt-tests": {
            "get": {"tags": ["prompt-tests"], "summary": "List prompt tests", "parameters": [{"type": "string", "name": "provider", "in": "query"}, {"type": "integer", "name": "prompt_version", "in": "query"}, {"type": "string", "name": "label", "in": "query"}, {"type": "string", "name": "receipt_id", "in": "query"}, {"type": "integer", "name": "offset", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["prompt-tests"], "summary": "Store a prompt test result", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "Created"}}}
        },
        "/prompt-tests/run": {"post": {"tags": ["prompt-tests"], "summary": "Run a stored receipt through one provider", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}}}},
        "/prompt-tests/statistics": {"get": {"tags": ["prompt-tests"], "summary": "Label statistics", "responses": {"200": {"description": "OK"}}}},
        "/prompt-tests/export": {"get": {"tags": ["prompt-tests"], "summary": "Export labeled prompt tests", "produces": ["text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "parameters": [{"type": "string", "name": "format", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/prompt-tests/{id}": {"get": {"tags": ["prompt-tests"], "summary": "Get a prompt test", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/prompt-tests/{id}/label": {"patch": {"tags": ["prompt-tests"], "summary": "Label a prompt test", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/receipts": {
            "get": {"tags": ["receipts"], "summary": "List receipts", "parameters": [{"type": "string", "name": "category", "in": "query"}, {"type": "integer", "name": "offset", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["receipts"], "summary": "Upload a benchmark receipt", "consumes": ["multipart/form-data"], "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}, {"type": "string", "name": "name", "in": "formData"}, {"type": "string", "name": "category", "in": "formData"}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/receipts/{id}": {
            "get": {"tags": ["receipts"], "summary": "Get a receipt", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"tags": ["receipts"], "summary": "Update receipt metadata or ground truth", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["receipts"], "summary": "Delete a receipt", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/receipts/{id}/image": {"get": {"tags": ["receipts"], "summary": "Presigned receipt image URL", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "boolean", "name": "cropped", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/receipts/{id}/crop": {"post": {"tags": ["receipts"], "summary": "Crop a receipt image", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "fisbench API",
	Description:      "Turkish receipt OCR benchmarking: OCR providers, LLM normalization into accounting documents, prompt versioning and labeled prompt tests.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
