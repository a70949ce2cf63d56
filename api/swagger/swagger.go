package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Skolaris API",
        "description": "Scheduling and ordered-assignment backend for school planning",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Sessions", "description": "Session planning with overlap detection"},
        {"name": "Modules", "description": "Module catalog"},
        {"name": "Courses", "description": "Course catalog"},
        {"name": "Assignments", "description": "Ordered module ↔ course assignment"},
        {"name": "Exports", "description": "Planning and catalog downloads"}
    ],
    "paths": {
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List planned sessions",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "integer"},
                    {"name": "classId", "in": "query", "type": "integer"},
                    {"name": "classRoomId", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Plan a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error or scheduling conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get a planned session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Sessions"],
                "summary": "Reschedule a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error or scheduling conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Remove a planned session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/modules": {
            "get": {
                "tags": ["Modules"],
                "summary": "List modules",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/modules/{id}": {
            "get": {
                "tags": ["Modules"],
                "summary": "Get a module",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/modules/{id}/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Assigned and unassigned courses of a module",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AssignmentBoard"}}
                }
            }
        },
        "/modules/{id}/courses": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Link a course to a module",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ModuleCourseLinkRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Already linked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Assignments"],
                "summary": "Replace the module's courses with an ordered list",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceCoursesRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/modules/{id}/courses/batch": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Add and remove courses in one operation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchAssignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/BatchResult"}},
                    "400": {"description": "Empty operation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/modules/{id}/courses/{courseId}": {
            "delete": {
                "tags": ["Assignments"],
                "summary": "Unlink a course from a module",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "courseId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Not linked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Assignments"],
                "summary": "Soft-delete a module ↔ course link",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "courseId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Assigned and unassigned modules of a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AssignmentBoard"}}
                }
            }
        },
        "/courses/{id}/modules": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Link a module to a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseModuleLinkRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Already linked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Assignments"],
                "summary": "Replace the course's modules with an ordered list",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceModulesRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/courses/{id}/modules/batch": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Add and remove modules in one operation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchAssignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/BatchResult"}},
                    "400": {"description": "Empty operation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/modules/{moduleId}": {
            "delete": {
                "tags": ["Assignments"],
                "summary": "Unlink a module from a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "moduleId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Not linked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Assignments"],
                "summary": "Soft-delete a course ↔ module link",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "moduleId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/planning/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export one day of planning as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/courses/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the course catalog as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        }
    },
    "definitions": {
        "SessionRequest": {
            "type": "object",
            "required": ["date", "start_time", "end_time", "teacher_id", "class_id", "class_room_id", "session_type_id"],
            "properties": {
                "date": {"type": "string", "example": "2025-09-01"},
                "start_time": {"type": "string", "example": "08:00"},
                "end_time": {"type": "string", "example": "10:00"},
                "teacher_id": {"type": "integer"},
                "class_id": {"type": "integer"},
                "class_room_id": {"type": "integer"},
                "session_type_id": {"type": "integer"}
            }
        },
        "ModuleCourseLinkRequest": {
            "type": "object",
            "required": ["course_id"],
            "properties": {
                "course_id": {"type": "integer"},
                "volume": {"type": "number"},
                "coefficient": {"type": "number"}
            }
        },
        "CourseModuleLinkRequest": {
            "type": "object",
            "required": ["module_id"],
            "properties": {
                "module_id": {"type": "integer"},
                "volume": {"type": "number"},
                "coefficient": {"type": "number"}
            }
        },
        "BatchAssignRequest": {
            "type": "object",
            "properties": {
                "add": {"type": "array", "items": {"type": "integer"}},
                "remove": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "ReplaceCoursesRequest": {
            "type": "object",
            "properties": {
                "course_ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "ReplaceModulesRequest": {
            "type": "object",
            "properties": {
                "module_ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "BatchResult": {
            "type": "object",
            "properties": {
                "affected": {"type": "integer"}
            }
        },
        "AssignmentBoard": {
            "type": "object",
            "properties": {
                "assigned": {"type": "array", "items": {"type": "object"}},
                "unassigned": {"type": "array", "items": {"type": "object"}}
            }
        },
        "ListMeta": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next": {"type": "boolean"},
                "has_previous": {"type": "boolean"}
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
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "meta": {"$ref": "#/definitions/ListMeta"},
                "error": {"$ref": "#/definitions/APIError"}
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
