// Package docs registers the OpenAPI document served at /v1/swagger.
// Regenerate the paths with `swag init -g cmd/api/main.go`.
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
        "/health": {"get": {"tags": ["system"], "summary": "Liveness and dependency status", "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}}},
        "/wallet": {"get": {"tags": ["wallet"], "summary": "Wallet session state", "responses": {"200": {"description": "OK"}}}},
        "/wallet/connect": {"post": {"tags": ["wallet"], "summary": "Connect the wallet", "responses": {"200": {"description": "OK"}, "403": {"description": "Rejected"}, "503": {"description": "No provider"}}}},
        "/wallet/disconnect": {"post": {"tags": ["wallet"], "summary": "Disconnect the wallet", "responses": {"200": {"description": "OK"}}}},
        "/auth/nonce": {"post": {"tags": ["auth"], "summary": "Sign-in challenge", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/auth/verify": {"post": {"tags": ["auth"], "summary": "Verify sign-in signature", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/jobs": {"get": {"tags": ["jobs"], "summary": "List jobs", "parameters": [{"type": "string", "name": "q", "in": "query"}, {"type": "string", "name": "type", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/jobs/{id}": {"get": {"tags": ["jobs"], "summary": "Job detail", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/jobs/{id}/status": {"get": {"security": [{"BearerAuth": []}], "tags": ["jobs"], "summary": "Job detail with application flag", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/jobs/{id}/apply": {"post": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Apply to a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "Already applied"}}}},
        "/applications": {"get": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "List my applications", "parameters": [{"type": "string", "name": "status", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/applications/{id}": {"patch": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Update application status", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Read my profile", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Save my profile", "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Update my profile", "responses": {"200": {"description": "OK"}}}
        },
        "/profiles/{address}": {"get": {"tags": ["profile"], "summary": "Read a student profile", "parameters": [{"type": "string", "name": "address", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/assets": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["assets"], "summary": "Files shared by an owner", "parameters": [{"type": "string", "name": "owner", "in": "query"}, {"type": "boolean", "name": "wait", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "tags": ["assets"], "summary": "Upload a PDF", "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}], "responses": {"201": {"description": "Created"}, "429": {"description": "Too Many Requests"}, "502": {"description": "Storage failed"}}}
        },
        "/assets/refresh": {"post": {"security": [{"BearerAuth": []}], "tags": ["assets"], "summary": "Reload shared files", "parameters": [{"type": "string", "name": "owner", "in": "query"}], "responses": {"202": {"description": "Accepted"}}}},
        "/access": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["access"], "summary": "Access list", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["access"], "summary": "Grant access", "responses": {"200": {"description": "OK"}, "409": {"description": "Change pending"}}}
        },
        "/access/{viewer}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["access"], "summary": "Revoke access", "parameters": [{"type": "string", "name": "viewer", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Change pending"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Chamba On Chain API",
	Description:      "Wallet-gated document sharing and job board backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
