// Package docs registers the OpenAPI description of the operator console
// with swag. Regenerate with: swag init -g cmd/api/main.go --parseInternal
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
                "summary": "Backend health",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/candidates": {
            "get": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "List candidates",
                "parameters": [
                    {"type": "integer", "default": 50, "description": "page size", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "page offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.CandidateList"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/candidates/resume": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Upload resume",
                "parameters": [
                    {"type": "file", "description": "PDF or Word resume", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.ResumeOutcome"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/candidates/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Candidate detail",
                "parameters": [
                    {"type": "string", "description": "candidate id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.CandidateView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/candidates/{id}/documents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "List candidate documents",
                "parameters": [
                    {"type": "string", "description": "candidate id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/registry.View"}}}
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Upload identity document",
                "parameters": [
                    {"type": "string", "description": "candidate id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "pan_card, aadhaar_card or other", "name": "document_type", "in": "formData", "required": true},
                    {"type": "file", "description": "image or PDF", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.DocumentOutcome"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/candidates/{id}/documents/{docId}": {
            "delete": {
                "tags": ["documents"],
                "summary": "Remove document locally",
                "parameters": [
                    {"type": "string", "description": "candidate id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "document id", "name": "docId", "in": "path", "required": true},
                    {"type": "boolean", "description": "operator confirmation", "name": "confirm", "in": "query", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "412": {"description": "Precondition Failed", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/candidates/{id}/documents/{docId}/download": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Download archived original",
                "parameters": [
                    {"type": "string", "description": "candidate id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "document id", "name": "docId", "in": "path", "required": true},
                    {"type": "boolean", "description": "stream the file instead of returning a URL", "name": "inline", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/candidates/{id}/request-documents": {
            "post": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Request identity documents",
                "parameters": [
                    {"type": "string", "description": "candidate id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/gateway.DocumentRequestResult"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/sessions/{slot}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Upload session state",
                "parameters": [
                    {"type": "string", "description": "resume or document:<candidate>:<type>", "name": "slot", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.Snapshot"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {"request_id": {"type": "string"}, "error": {"$ref": "#/definitions/handler.errorEnvelope"}}
        },
        "handler.CandidateList": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "object"}},
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "session.Snapshot": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "slot": {"type": "string"},
                "kind": {"type": "string"},
                "file_name": {"type": "string"},
                "state": {"type": "string"},
                "progress": {"type": "integer"},
                "reason": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"}
            }
        },
        "registry.View": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "displayStatus": {"type": "string"},
                "matchPercent": {"type": "integer"},
                "archived": {"type": "boolean"}
            }
        },
        "service.ResumeOutcome": {
            "type": "object",
            "properties": {
                "session": {"$ref": "#/definitions/session.Snapshot"},
                "message": {"type": "string"},
                "candidate_id": {"type": "string"},
                "display": {"type": "object"}
            }
        },
        "service.DocumentOutcome": {
            "type": "object",
            "properties": {
                "session": {"$ref": "#/definitions/session.Snapshot"},
                "message": {"type": "string"},
                "overall_status": {"type": "string"},
                "submitted": {"type": "array", "items": {"$ref": "#/definitions/registry.View"}},
                "documents": {"type": "array", "items": {"$ref": "#/definitions/registry.View"}}
            }
        },
        "service.CandidateView": {
            "type": "object",
            "properties": {
                "candidate": {"type": "object"},
                "display": {"type": "object"},
                "documents": {"type": "array", "items": {"$ref": "#/definitions/registry.View"}}
            }
        },
        "gateway.DocumentRequestResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "email_body": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Document Intake Console API",
	Description:      "Operator console for resume intake and identity document verification.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
