// Package docs holds the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "JudolHunter Maintainers",
            "url": "https://github.com/raysh454/judolhunter"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.HealthResponse"}}
                }
            }
        },
        "/quota": {
            "get": {
                "produces": ["application/json"],
                "tags": ["quota"],
                "summary": "Plan and weekly domain usage of the caller",
                "parameters": [
                    {"type": "string", "description": "Session identifier", "name": "X-Session-ID", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.QuotaResponse"}},
                    "404": {"description": "Quotas disabled", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/scans": {
            "get": {
                "produces": ["application/json"],
                "tags": ["scans"],
                "summary": "List the caller's finished scans, newest first",
                "parameters": [
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/store.Summary"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["scans"],
                "summary": "Start scanning one or more URLs",
                "parameters": [
                    {"description": "URLs to scan", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.CreateScanRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/server.CreateScanResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "403": {"description": "Too many URLs for plan", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "429": {"description": "Too many submissions", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/scans/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["scans"],
                "summary": "Get a scan's state and result",
                "parameters": [
                    {"type": "string", "description": "Scan ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.ScanResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["scans"],
                "summary": "Cancel a running scan or delete a finished one",
                "parameters": [
                    {"type": "string", "description": "Scan ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Cancellation requested"},
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/scans/{id}/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["scans"],
                "summary": "Progress events after a sequence number",
                "parameters": [
                    {"type": "string", "description": "Scan ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Last sequence already seen", "name": "after", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.EventsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/ws/scans/{id}": {
            "get": {
                "tags": ["scans"],
                "summary": "Stream progress events over a WebSocket",
                "parameters": [
                    {"type": "string", "description": "Scan ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Last sequence already seen", "name": "after", "in": "query"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "server.CreateScanRequest": {
            "type": "object",
            "properties": {
                "url": {"type": "string", "example": "contoh-desa.id"},
                "urls": {"type": "array", "items": {"type": "string"}},
                "crawl": {"type": "boolean", "example": false}
            }
        },
        "server.CreateScanResponse": {
            "type": "object",
            "properties": {
                "scans": {"type": "array", "items": {"$ref": "#/definitions/app.Handle"}}
            }
        },
        "app.Handle": {
            "type": "object",
            "properties": {
                "scan_id": {"type": "string"},
                "url": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "server.ScanResponse": {
            "type": "object",
            "properties": {
                "scan_id": {"type": "string"},
                "parent_id": {"type": "string"},
                "url": {"type": "string"},
                "state": {"type": "string", "example": "DETECTING"},
                "result": {"type": "object"}
            }
        },
        "server.EventsResponse": {
            "type": "object",
            "properties": {
                "scan_id": {"type": "string"},
                "events": {"type": "array", "items": {"$ref": "#/definitions/model.ProgressEvent"}},
                "done": {"type": "boolean"}
            }
        },
        "model.ProgressEvent": {
            "type": "object",
            "properties": {
                "scan_id": {"type": "string"},
                "sequence": {"type": "integer"},
                "kind": {"type": "string", "enum": ["status", "progress", "complete", "error"]},
                "state": {"type": "string"},
                "message": {"type": "string"},
                "timestamp": {"type": "string"},
                "data": {"type": "object"}
            }
        },
        "server.QuotaResponse": {
            "type": "object",
            "properties": {
                "plan": {"type": "object"},
                "week": {"type": "string", "example": "2025-03-03"},
                "usage": {"type": "array", "items": {"type": "object"}}
            }
        },
        "server.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "patterns_version": {"type": "string", "example": "2025.1"}
            }
        },
        "store.Summary": {
            "type": "object",
            "properties": {
                "scan_id": {"type": "string"},
                "parent_id": {"type": "string"},
                "url": {"type": "string"},
                "domain": {"type": "string"},
                "status": {"type": "string"},
                "risk_level": {"type": "string"},
                "issues": {"type": "integer"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "scan not found"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "JudolHunter API",
	Description:      "Scans websites for search-engine cloaking and injected gambling content.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
