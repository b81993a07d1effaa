// Package docs registers the OpenAPI description of the opsboard API with swag.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.healthResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "description": "Every user, newest first.",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create a user",
                "parameters": [
                    {"type": "string", "description": "Replays the first response for a repeated key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "User fields", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get a user",
                "parameters": [{"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            },
            "put": {
                "description": "Partial update: omitted fields keep their value.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update a user",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Delete a user",
                "parameters": [{"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/analytics": {
            "get": {
                "description": "Optional exact type filter and inclusive timestamp range, newest first.",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "List metrics",
                "parameters": [
                    {"type": "string", "description": "revenue, users, conversion, performance, growth or uptime", "name": "metricType", "in": "query"},
                    {"type": "string", "description": "RFC 3339 timestamp or YYYY-MM-DD (inclusive)", "name": "startDate", "in": "query"},
                    {"type": "string", "description": "RFC 3339 timestamp or YYYY-MM-DD (inclusive)", "name": "endDate", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Record a metric",
                "parameters": [
                    {"type": "string", "description": "Replays the first response for a repeated key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Metric fields; metricValue may be a numeric string", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createMetricRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/analytics/summary": {
            "get": {
                "description": "Count, average, max, min and latest timestamp per metric type, ordered by type.",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Per-type aggregate",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/analytics/type/{type}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "List metrics of one type",
                "parameters": [{"type": "string", "description": "Metric type", "name": "type", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/analytics/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Delete a metric",
                "parameters": [{"type": "string", "description": "Metric id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "handler.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "count": {"type": "integer"},
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.createUserRequest": {
            "type": "object",
            "required": ["email", "name"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "developer", "admin"]},
                "status": {"type": "string", "enum": ["active", "inactive"]}
            }
        },
        "handler.updateUserRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "developer", "admin"]},
                "status": {"type": "string", "enum": ["active", "inactive"]}
            }
        },
        "handler.createMetricRequest": {
            "type": "object",
            "required": ["metricName", "metricType", "metricValue"],
            "properties": {
                "metricName": {"type": "string"},
                "metricValue": {"type": "number"},
                "metricType": {"type": "string", "enum": ["revenue", "users", "conversion", "performance", "growth", "uptime"]},
                "description": {"type": "string", "maxLength": 200},
                "timestamp": {"type": "string", "format": "date-time"},
                "metadata": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handler.healthResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "timestamp": {"type": "string"},
                "environment": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "status": {"type": "string"},
                "dependencies": {"type": "object", "additionalProperties": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "v1",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "opsboard API",
	Description:      "Users and analytics metrics over MongoDB.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
