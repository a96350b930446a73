package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PeerConnect Portal API",
        "description": "JSON surface of the study-materials browser. Requests are authenticated by the portal session cookie.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Materials", "description": "Study-material listing, download gate and uploads"},
        {"name": "Notifications", "description": "Notification feed of the signed-in student"}
    ],
    "paths": {
        "/materials": {
            "get": {
                "tags": ["Materials"],
                "summary": "List study materials",
                "description": "One page of the listing with the download gate applied to every card.",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string", "description": "Free-text search"},
                    {"name": "module", "in": "query", "type": "string", "description": "Module filter"},
                    {"name": "year", "in": "query", "type": "string", "description": "Year filter"},
                    {"name": "type", "in": "query", "type": "string", "description": "Material type filter"},
                    {"name": "sort", "in": "query", "type": "string", "default": "recent"},
                    {"name": "page", "in": "query", "type": "integer", "default": 1}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MaterialsEnvelope"}},
                    "401": {"description": "Session missing or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Listing unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/materials/gate": {
            "get": {
                "tags": ["Materials"],
                "summary": "Download gate",
                "description": "Whether the current student may open study materials. Fails closed.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/GateEnvelope"}},
                    "401": {"description": "Session missing or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/materials/upload": {
            "post": {
                "tags": ["Materials"],
                "summary": "Upload a study material",
                "description": "Exactly one of file or link must be supplied. Returns the refreshed listing page.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "title", "in": "formData", "type": "string"},
                    {"name": "description", "in": "formData", "type": "string"},
                    {"name": "type", "in": "formData", "type": "string"},
                    {"name": "module", "in": "formData", "type": "string"},
                    {"name": "year", "in": "formData", "type": "string"},
                    {"name": "link", "in": "formData", "type": "string"},
                    {"name": "file", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/MaterialsEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Session missing or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/latest": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Latest notifications",
                "description": "The newest notifications of the signed-in student.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/NotificationsEnvelope"}},
                    "401": {"description": "Session missing or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Feed unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "CardAction": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["none", "download", "locked"]},
                "href": {"type": "string"},
                "label": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "MaterialCard": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "type": {"type": "string"},
                "type_icon": {"type": "string"},
                "module": {"type": "string"},
                "year": {"type": "string"},
                "date": {"type": "string"},
                "uploader": {"type": "string"},
                "avatar_initial": {"type": "string"},
                "downloads": {"type": "integer"},
                "file_type": {"type": "string"},
                "action": {"$ref": "#/definitions/CardAction"}
            }
        },
        "GateStatus": {
            "type": "object",
            "properties": {
                "can_download": {"type": "boolean"}
            }
        },
        "MaterialsEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/MaterialCard"}},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {
                    "type": "object",
                    "properties": {
                        "can_download": {"type": "boolean"},
                        "message": {"type": "string"}
                    }
                }
            }
        },
        "Notification": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "text": {"type": "string"},
                "type": {"type": "string"},
                "read": {"type": "boolean"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "NotificationsEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/Notification"}}
            }
        },
        "GateEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/GateStatus"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
