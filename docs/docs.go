// Package docs holds the OpenAPI document served at /swagger.
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
        "/api/jobs": {
            "get": {
                "description": "Jobs visible for the optional search term, with status counters.",
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "List jobs",
                "parameters": [
                    {"type": "string", "description": "Search term", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/jobSheetEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/failure"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/failure"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/failure"}}
                }
            }
        },
        "/api/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Session state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/sessionEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "failure": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "job": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string"},
                "job_title": {"type": "string"},
                "company_name": {"type": "string"},
                "location": {"type": "string"},
                "employment_type": {"type": "string"},
                "experience_required": {"type": "string"},
                "job_url": {"type": "string"},
                "applied_date": {"type": "string"},
                "current_status": {"type": "string"},
                "is_active": {"type": "boolean"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "notes": {"type": "array", "items": {"type": "string"}},
                "resume_url": {"type": "string"},
                "cover_letter_url": {"type": "string"}
            }
        },
        "stats": {
            "type": "object",
            "properties": {
                "applied": {"type": "integer"},
                "active": {"type": "integer"},
                "shortlisted": {"type": "integer"},
                "interviewed": {"type": "integer"},
                "offered": {"type": "integer"},
                "rejected": {"type": "integer"}
            }
        },
        "jobSheetEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {
                    "type": "object",
                    "properties": {
                        "query": {"type": "string"},
                        "total": {"type": "integer"},
                        "jobs": {"type": "array", "items": {"$ref": "#/definitions/job"}},
                        "stats": {"$ref": "#/definitions/stats"}
                    }
                }
            }
        },
        "sessionEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {
                    "type": "object",
                    "properties": {
                        "logged_in": {"type": "boolean"},
                        "theme": {"type": "string"},
                        "identity": {
                            "type": "object",
                            "properties": {
                                "user_id": {"type": "string"},
                                "email": {"type": "string"},
                                "expires_at": {"type": "string"}
                            }
                        }
                    }
                }
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
	Title:            "Jobsheet API",
	Description:      "JSON view of a browser session's job sheet.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
