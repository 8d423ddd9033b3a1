// Package docs registers the OpenAPI description served at /swagger. The
// paths are generated from the handler annotations with swag init.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Create an account", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Exchange credentials for a bearer token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/items": {
            "get": {"tags": ["items"], "summary": "List tracked items", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["items"], "summary": "Create a tracked item", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/items/{id}": {
            "put": {"tags": ["items"], "summary": "Edit a tracked item", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"tags": ["items"], "summary": "Delete a tracked item and all its records", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/items/{id}/archive": {"post": {"tags": ["items"], "summary": "Archive a tracked item", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/records": {
            "get": {"tags": ["records"], "summary": "List an item's records, newest first", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["records"], "summary": "Log a completion", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/records/{id}": {"delete": {"tags": ["records"], "summary": "Delete a record", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}},
        "/tracker/days": {"get": {"tags": ["tracker"], "summary": "Tracker grid", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/tracker/toggle": {"post": {"tags": ["tracker"], "summary": "Tap a cell", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "202": {"description": "Pending detail"}, "409": {"description": "Ambiguous"}, "422": {"description": "Detail rejected"}}}},
        "/tracker/destroy-last": {"post": {"tags": ["tracker"], "summary": "Remove the newest record of a cell", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/tracker/pending/{id}": {
            "post": {"tags": ["tracker"], "summary": "Complete a pending detail flow", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}},
            "delete": {"tags": ["tracker"], "summary": "Cancel a pending detail flow", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/stats": {"get": {"tags": ["stats"], "summary": "Usage statistics", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kanso Tally API",
	Description:      "Daily completion tracking with goals, streaks and statistics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
