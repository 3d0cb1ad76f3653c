// Package docs registra el documento Swagger de la API. Regenerar con
// `swag init -g cmd/api/main.go` cuando cambien las anotaciones de los handlers.
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
        "/api/medicamentos": {
            "get": {
                "description": "Devuelve las medicaciones no archivadas vigentes hoy, más recientes primero.",
                "produces": ["application/json"],
                "tags": ["medicamentos"],
                "summary": "Listar medicaciones activas",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/medications.medicationResponse"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/medications.messageResponse"}}
                }
            },
            "post": {
                "description": "Crea una medicación con su horario diario. name y startDate son obligatorios.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["medicamentos"],
                "summary": "Registrar medicación",
                "parameters": [
                    {"description": "Datos de la medicación; fechas YYYY-MM-DD, horarios HH:MM", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/medications.medicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/medications.medicationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/medications.messageResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/medications.messageResponse"}}
                }
            }
        },
        "/api/medicamentos/{medID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["medicamentos"],
                "summary": "Obtener medicación",
                "parameters": [{"type": "string", "description": "ID de la medicación", "name": "medID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/medications.medicationResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/medications.messageResponse"}}
                }
            },
            "put": {
                "description": "Reemplaza todos los campos editables. Medicaciones archivadas devuelven 404.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["medicamentos"],
                "summary": "Reemplazar medicación",
                "parameters": [
                    {"type": "string", "description": "ID de la medicación", "name": "medID", "in": "path", "required": true},
                    {"description": "Datos completos de la medicación", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/medications.medicationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/medications.medicationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/medications.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/medications.messageResponse"}}
                }
            },
            "delete": {
                "description": "No borra: marca is_archived y la medicación pasa al historial.",
                "produces": ["application/json"],
                "tags": ["medicamentos"],
                "summary": "Archivar medicación",
                "parameters": [{"type": "string", "description": "ID de la medicación", "name": "medID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/medications.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/medications.messageResponse"}}
                }
            }
        },
        "/api/marcar_administrado": {
            "post": {
                "description": "Crea o actualiza el registro de la toma (medicación, día, hora). Repetir la llamada no duplica registros.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["calendario"],
                "summary": "Marcar toma como administrada",
                "parameters": [
                    {"description": "Toma a marcar; data_dose YYYY-MM-DD, hora_dose HH:MM", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/doses.markRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/doses.markResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/doses.markResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/doses.markResponse"}}
                }
            }
        },
        "/api/administracoes/{medID}/{date}/{time}": {
            "get": {
                "description": "Devuelve si la toma (medicación, día, hora) fue administrada. Sin registro se informa como no administrada.",
                "produces": ["application/json"],
                "tags": ["calendario"],
                "summary": "Estado de una toma",
                "parameters": [
                    {"type": "string", "description": "ID de la medicación", "name": "medID", "in": "path", "required": true},
                    {"type": "string", "description": "Día YYYY-MM-DD", "name": "date", "in": "path", "required": true},
                    {"type": "string", "description": "Hora HH:MM", "name": "time", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/doses.statusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/doses.markResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/doses.markResponse"}}
                }
            }
        },
        "/api/calendario/{year}/{month}": {
            "get": {
                "description": "Grilla de semanas (lunes a domingo) con las tomas de cada día y su estado.",
                "produces": ["application/json"],
                "tags": ["calendario"],
                "summary": "Calendario del mes",
                "parameters": [
                    {"type": "integer", "description": "Año", "name": "year", "in": "path", "required": true},
                    {"type": "integer", "description": "Mes (1-12)", "name": "month", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/doses.calendarResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/doses.markResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/doses.markResponse"}}
                }
            }
        },
        "/calendario/exportar_ics/{year}/{month}": {
            "get": {
                "description": "Genera un archivo iCalendar con un evento de 15 minutos por toma. No incluye estado de administración.",
                "produces": ["text/calendar"],
                "tags": ["calendario"],
                "summary": "Exportar calendario del mes",
                "parameters": [
                    {"type": "integer", "description": "Año", "name": "year", "in": "path", "required": true},
                    {"type": "integer", "description": "Mes (1-12)", "name": "month", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "medications.medicationRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "descricao": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "times": {"type": "array", "items": {"type": "string"}},
                "isRegular": {"type": "boolean"},
                "quantity": {"type": "number"},
                "form": {"type": "string"},
                "unit": {"type": "string"}
            }
        },
        "medications.medicationResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "descricao": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "times": {"type": "array", "items": {"type": "string"}},
                "is_regular": {"type": "boolean"},
                "quantity": {"type": "number"},
                "form": {"type": "string"},
                "unit": {"type": "string"},
                "is_archived": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "medications.messageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "doses.markRequest": {
            "type": "object",
            "properties": {
                "medicamento_id": {"type": "string"},
                "data_dose": {"type": "string"},
                "hora_dose": {"type": "string"},
                "foi_administrado": {"type": "boolean"}
            }
        },
        "doses.markResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "doses.statusResponse": {
            "type": "object",
            "properties": {
                "medicamento_id": {"type": "string"},
                "data_dose": {"type": "string"},
                "hora_dose": {"type": "string"},
                "foi_administrado": {"type": "boolean"},
                "administrado_em": {"type": "string", "format": "date-time"}
            }
        },
        "doses.doseResponse": {
            "type": "object",
            "properties": {
                "medicamento_id": {"type": "string"},
                "name": {"type": "string"},
                "descricao": {"type": "string"},
                "data_dose": {"type": "string"},
                "hora_dose": {"type": "string"},
                "foi_administrado": {"type": "boolean"}
            }
        },
        "doses.dayResponse": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "in_month": {"type": "boolean"},
                "is_today": {"type": "boolean"},
                "doses": {"type": "array", "items": {"$ref": "#/definitions/doses.doseResponse"}}
            }
        },
        "doses.MonthRef": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "month": {"type": "integer"}
            }
        },
        "doses.calendarResponse": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "month": {"type": "integer"},
                "weeks": {"type": "array", "items": {"type": "array", "items": {"$ref": "#/definitions/doses.dayResponse"}}},
                "prev": {"$ref": "#/definitions/doses.MonthRef"},
                "next": {"$ref": "#/definitions/doses.MonthRef"}
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
	Title:            "Medication Tracker API",
	Description:      "Registro de medicaciones, calendario de tomas y exportación iCalendar.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
