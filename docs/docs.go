// Package docs registers the OpenAPI document served at /swagger. Regenerate
// with `swag init` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/generation/post": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Generation"],
                "summary": "Generate a farewell message",
                "operationId": "generatePrompt",
                "parameters": [
                    {"type": "string", "name": "title", "in": "formData"},
                    {"type": "string", "name": "scenario", "in": "formData", "required": true},
                    {"type": "string", "name": "tone", "in": "formData", "required": true},
                    {"type": "string", "name": "message", "in": "formData", "required": true},
                    {"type": "integer", "name": "idUser", "in": "formData"},
                    {"type": "string", "name": "includeGifs", "in": "formData"},
                    {"type": "file", "name": "image", "in": "formData"},
                    {"type": "file", "name": "background", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.GeneratePromptResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/generation/{id}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Generation"],
                "summary": "Partially update a prompt",
                "operationId": "modifyPrompt",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ModifyPromptRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ModifyPromptResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/reponses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Responses"],
                "summary": "List responses",
                "operationId": "listResponses",
                "parameters": [
                    {"type": "integer", "name": "prompt", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Response"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Responses"],
                "summary": "Create a response",
                "operationId": "createResponse",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateResponseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.CreateResponseResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/reponses/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Responses"],
                "summary": "Fetch a response",
                "operationId": "getResponse",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/votes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Votes"],
                "summary": "List votes",
                "operationId": "listVotes",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Vote"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Votes"],
                "summary": "Cast a vote",
                "operationId": "castVote",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CastVoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.CastVoteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/votes/count/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Votes"],
                "summary": "Tally votes for a response",
                "operationId": "countVotes",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TallyResponse"}}
                }
            }
        },
        "/votes/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Votes"],
                "summary": "Fetch a vote",
                "operationId": "getVote",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Vote"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Votes"],
                "summary": "Delete a vote",
                "operationId": "deleteVote",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DeleteVoteResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/users/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Create an account",
                "operationId": "registerUser",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/users/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Log in",
                "operationId": "loginUser",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LoginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Fetch a user profile",
                "operationId": "getUser",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Prompt": {"type": "object"},
        "domain.Response": {"type": "object"},
        "domain.User": {"type": "object"},
        "domain.Vote": {"type": "object"},
        "handlers.CastVoteRequest": {"type": "object"},
        "handlers.CastVoteResponse": {"type": "object"},
        "handlers.CreateResponseRequest": {"type": "object"},
        "handlers.CreateResponseResponse": {"type": "object"},
        "handlers.DeleteVoteResponse": {"type": "object"},
        "handlers.ErrorResponse": {"type": "object"},
        "handlers.GeneratePromptResponse": {"type": "object"},
        "handlers.LoginRequest": {"type": "object"},
        "handlers.LoginResponse": {"type": "object"},
        "handlers.ModifyPromptRequest": {"type": "object"},
        "handlers.ModifyPromptResponse": {"type": "object"},
        "handlers.RegisterRequest": {"type": "object"},
        "handlers.TallyResponse": {"type": "object"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "TheEnd.page API",
	Description:      "Farewell-message generation, responses, votes, and accounts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
