// Package docs holds the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/mymoney_backend/main.go -o cmd/docs
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
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "User login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}
            }
        },
        "/accounts": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "List accounts", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Create a new account", "responses": {"201": {"description": "Created"}}}
        },
        "/accounts/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Get an account by ID", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Update an account", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Delete an account", "responses": {"204": {"description": "No Content"}}}
        },
        "/accounts/{id}/initial-balance": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Change the initial balance", "responses": {"200": {"description": "OK"}}}
        },
        "/accounts/{id}/transactions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "List an account's transactions", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Create a transaction", "responses": {"201": {"description": "Created"}}}
        },
        "/transactions/{transactionID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Get a transaction", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Update a transaction", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Delete a transaction", "responses": {"204": {"description": "No Content"}}}
        },
        "/transactions/bulk-delete": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Delete several transactions", "responses": {"200": {"description": "OK"}}}
        },
        "/transactions/bulk-reconcile": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Reconcile several transactions", "responses": {"200": {"description": "OK"}}}
        },
        "/accounts/{id}/schedulers": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["schedulers"], "summary": "List an account's schedulers", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["schedulers"], "summary": "Create a scheduler", "responses": {"201": {"description": "Created"}}}
        },
        "/accounts/{id}/scheduler-summaries": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["schedulers"], "summary": "Scheduler summaries", "responses": {"200": {"description": "OK"}}}
        },
        "/schedulers/{schedulerID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["schedulers"], "summary": "Get a scheduler", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["schedulers"], "summary": "Update a scheduler", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["schedulers"], "summary": "Delete a scheduler", "responses": {"204": {"description": "No Content"}}}
        },
        "/schedulers/{schedulerID}/clone": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["schedulers"], "summary": "Clone a scheduler now", "responses": {"200": {"description": "OK"}}}
        },
        "/schedulers/{schedulerID}/reset": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["schedulers"], "summary": "Reset a failed scheduler", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/tags": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tags"], "summary": "List tags", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["tags"], "summary": "Create a tag", "responses": {"201": {"description": "Created"}}}
        },
        "/tags/{tagID}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["tags"], "summary": "Rename a tag", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["tags"], "summary": "Delete a tag", "responses": {"204": {"description": "No Content"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "MyMoney Backend API",
	Description:      "Accounts, transactions and recurring schedulers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
