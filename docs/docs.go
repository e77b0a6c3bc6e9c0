// Package docs описание API в формате Swagger 2.0 для gin-swagger.
// Файл поддерживается вручную и должен совпадать с маршрутами из internal/api/routes.
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
        "/api/training/import": {
            "post": {
                "description": "Принимает xlsx, csv или json. Листы с нераспознанным форматом пропускаются с предупреждением.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["training"],
                "summary": "Импортировать таблицу QC-фидбэка",
                "parameters": [
                    {"type": "file", "description": "Файл книги", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Формат для нераспознанных листов (WIS_QC, BUILD_REVIEW, CLIENT_FEEDBACK)", "name": "format", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "Итог импорта", "schema": {"$ref": "#/definitions/training.ImportSummary"}},
                    "400": {"description": "Неверный файл", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "413": {"description": "Файл слишком большой", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "429": {"description": "Превышен лимит запросов", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/api/training/import/rows": {
            "post": {
                "description": "Листы и строки передаются как есть: первая строка листа является заголовком",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["training"],
                "summary": "Импортировать книгу в JSON",
                "parameters": [
                    {"description": "Книга", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/training.ImportRowsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Итог импорта", "schema": {"$ref": "#/definitions/training.ImportSummary"}},
                    "400": {"description": "Неверный запрос", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/api/training/mine": {
            "post": {
                "produces": ["application/json"],
                "tags": ["training"],
                "summary": "Запустить майнинг паттернов",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/training.MiningResult"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/api/training/classify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["training"],
                "summary": "Предпросмотр классификации",
                "parameters": [
                    {"description": "Текст", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/training.ClassifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/training.ClassificationPreview"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/api/training/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["training"],
                "summary": "Статистика записей и паттернов",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/training.Stats"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/api/training/patterns": {
            "get": {
                "produces": ["application/json"],
                "tags": ["training"],
                "summary": "Список паттернов",
                "parameters": [
                    {"type": "boolean", "description": "Только активные", "name": "active", "in": "query"},
                    {"type": "integer", "description": "Максимум паттернов", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/training.PatternsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/api/training/patterns/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["training"],
                "summary": "Детали паттерна",
                "parameters": [
                    {"type": "string", "description": "ID паттерна", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/training.PatternDetail"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/api/training/suggestions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["training"],
                "summary": "Рекомендации по паттернам",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/training.SuggestionsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/api/training/data": {
            "delete": {
                "description": "Необратимо удаляет все записи и паттерны",
                "produces": ["application/json"],
                "tags": ["training"],
                "summary": "Удалить все данные обучения",
                "parameters": [
                    {"type": "boolean", "description": "Подтверждение удаления", "name": "confirm", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/repositories.ClearResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "middleware.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "boolean"},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "repositories.ClearResult": {
            "type": "object",
            "properties": {
                "patterns_deleted": {"type": "integer"},
                "records_deleted": {"type": "integer"}
            }
        },
        "repositories.CategoryCount": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "count": {"type": "integer"}
            }
        },
        "importer.Sheet": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "rows": {"type": "array", "items": {"type": "array", "items": {}}}
            }
        },
        "models.Pattern": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "pattern_name": {"type": "string"},
                "description": {"type": "string"},
                "source_types": {"type": "array", "items": {"type": "string"}},
                "occurrence_count": {"type": "integer"},
                "common_categories": {"type": "array", "items": {"type": "string"}},
                "common_defect_types": {"type": "array", "items": {"type": "string"}},
                "common_pmcs": {"type": "array", "items": {"type": "string"}},
                "common_keywords": {"type": "array", "items": {"type": "string"}},
                "root_causes": {"type": "array", "items": {"type": "string"}},
                "prevention_tips": {"type": "array", "items": {"type": "string"}},
                "resolution_steps": {"type": "array", "items": {"type": "string"}},
                "is_active": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "models.TrainingRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "source_format": {"type": "string"},
                "import_id": {"type": "string"},
                "feedback_text": {"type": "string"},
                "category": {"type": "string"},
                "sub_category": {"type": "string"},
                "keywords": {"type": "array", "items": {"type": "string"}},
                "pmc_name": {"type": "string"},
                "defect_type": {"type": "string"},
                "training_needed": {"type": "boolean"},
                "pattern_id": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "training.ImportRowsRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "example": "WIS_QC"},
                "name": {"type": "string"},
                "sheets": {"type": "array", "items": {"$ref": "#/definitions/importer.Sheet"}}
            }
        },
        "training.ClassifyRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "text": {"type": "string", "example": "Hero image missing on homepage"}
            }
        },
        "training.PatternBrief": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "occurrence_count": {"type": "integer"},
                "primary_category": {"type": "string"}
            }
        },
        "training.ImportSummary": {
            "type": "object",
            "properties": {
                "import_id": {"type": "string"},
                "total_processed": {"type": "integer"},
                "successful": {"type": "integer"},
                "failed": {"type": "integer"},
                "warnings": {"type": "array", "items": {"type": "string"}},
                "pattern_summary": {
                    "type": "object",
                    "properties": {
                        "new_patterns": {"type": "integer"},
                        "updated_patterns": {"type": "integer"},
                        "top_patterns": {"type": "array", "items": {"$ref": "#/definitions/training.PatternBrief"}}
                    }
                },
                "breakdown": {"type": "object", "additionalProperties": {"type": "integer"}},
                "sheets_processed": {"type": "integer"},
                "sheets_skipped": {"type": "integer"},
                "duration_ns": {"type": "integer"}
            }
        },
        "training.MiningResult": {
            "type": "object",
            "properties": {
                "records_processed": {"type": "integer"},
                "reclassified": {"type": "integer"},
                "new_patterns": {"type": "integer"},
                "updated_patterns": {"type": "integer"},
                "categories": {"type": "array", "items": {"type": "string"}}
            }
        },
        "training.ClassificationPreview": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "keywords": {"type": "array", "items": {"type": "string"}},
                "scores": {"type": "array", "items": {"type": "object"}}
            }
        },
        "training.PatternStat": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "occurrence_count": {"type": "integer"},
                "sample_defects": {"type": "array", "items": {"type": "string"}}
            }
        },
        "training.Stats": {
            "type": "object",
            "properties": {
                "total_records": {"type": "integer"},
                "total_patterns": {"type": "integer"},
                "by_source_format": {"type": "object", "additionalProperties": {"type": "integer"}},
                "top_categories": {"type": "array", "items": {"$ref": "#/definitions/repositories.CategoryCount"}},
                "top_patterns": {"type": "array", "items": {"$ref": "#/definitions/training.PatternStat"}}
            }
        },
        "training.PatternDetail": {
            "type": "object",
            "properties": {
                "pattern": {"$ref": "#/definitions/models.Pattern"},
                "recent_records": {"type": "array", "items": {"$ref": "#/definitions/models.TrainingRecord"}},
                "keyword_groups": {"type": "array", "items": {"type": "object"}}
            }
        },
        "training.PatternsResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "patterns": {"type": "array", "items": {"$ref": "#/definitions/models.Pattern"}}
            }
        },
        "training.Suggestion": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "priority": {"type": "string"},
                "category": {"type": "string"},
                "message": {"type": "string"},
                "count": {"type": "integer"}
            }
        },
        "training.SuggestionsResponse": {
            "type": "object",
            "properties": {
                "suggestions": {"type": "array", "items": {"$ref": "#/definitions/training.Suggestion"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "QC Insights API",
	Description:      "Импорт таблиц QC-фидбэка, майнинг паттернов дефектов и рекомендации.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
