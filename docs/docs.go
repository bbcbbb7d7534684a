// Package docs holds the Swagger document served at /docs.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
                "description": "Reports service status, database connectivity and catalogue size",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}
                }
            }
        },
        "/api/stores": {
            "get": {
                "description": "Returns stores in load order, optionally filtered by chain or home network membership",
                "produces": ["application/json"],
                "tags": ["stores"],
                "summary": "List stores",
                "parameters": [
                    {"type": "string", "description": "Chain name (case-insensitive)", "name": "chain", "in": "query"},
                    {"type": "boolean", "description": "Only home stores (true) or only competitors (false)", "name": "home", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.StoresResponse"}},
                    "400": {"description": "Bad request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/stores/{storeId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stores"],
                "summary": "Get store",
                "parameters": [
                    {"type": "string", "description": "Store ID", "name": "storeId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/stores.Store"}},
                    "404": {"description": "Store not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/admin/stores/{storeId}": {
            "patch": {
                "description": "Sets is_active and/or replaces the location. Requires the admin API key.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Update store",
                "parameters": [
                    {"type": "string", "description": "Store ID", "name": "storeId", "in": "path", "required": true},
                    {"description": "Changes", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateStoreRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/stores.Store"}},
                    "400": {"description": "Bad request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Store not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/stores/{storeId}/competitors": {
            "get": {
                "description": "Active competitor stores within the radius, nearest first, grouped by chain",
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Competitors near a store",
                "parameters": [
                    {"type": "string", "description": "Home store ID", "name": "storeId", "in": "path", "required": true},
                    {"type": "number", "description": "Radius in km (default from config)", "name": "radius", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ProximityResponse"}},
                    "400": {"description": "Bad request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Store not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/proximity": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Competitors near every home store",
                "parameters": [
                    {"type": "number", "description": "Radius in km (default from config)", "name": "radius", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ProximityListResponse"}},
                    "400": {"description": "Bad request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/stores/{storeId}/trends": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Sales trend",
                "parameters": [
                    {"type": "string", "description": "Home store ID", "name": "storeId", "in": "path", "required": true},
                    {"type": "integer", "description": "Window length in days (default from config)", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/analytics.SalesTrend"}},
                    "400": {"description": "Bad request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Store not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/stores/{storeId}/inventory": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Inventory recommendations",
                "parameters": [
                    {"type": "string", "description": "Home store ID", "name": "storeId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.InventoryResponse"}},
                    "400": {"description": "Bad request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Store not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/stores/{storeId}/forecast": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Demand forecast",
                "parameters": [
                    {"type": "string", "description": "Home store ID", "name": "storeId", "in": "path", "required": true},
                    {"type": "integer", "description": "Horizon in days (default from config)", "name": "days", "in": "query"},
                    {"type": "number", "description": "Competition radius in km (default from config)", "name": "radius", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ForecastResponse"}},
                    "400": {"description": "Bad request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Store not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/stores/{storeId}/insights": {
            "get": {
                "description": "Runs the full analysis and returns unexpired insights, most urgent first",
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Store insights",
                "parameters": [
                    {"type": "string", "description": "Home store ID", "name": "storeId", "in": "path", "required": true},
                    {"type": "number", "description": "Radius in km (default from config)", "name": "radius", "in": "query"},
                    {"type": "integer", "description": "Sales window in days (default from config)", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.InsightsResponse"}},
                    "400": {"description": "Bad request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Store not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/stores/{storeId}/weather": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Store weather",
                "parameters": [
                    {"type": "string", "description": "Home store ID", "name": "storeId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/weather.Snapshot"}},
                    "404": {"description": "Store not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Weather unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/chat": {
            "post": {
                "description": "Routes the message to the relevant analyses, builds context and asks the model. Falls back to an insight summary when the model is unavailable.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Chat about a store",
                "parameters": [
                    {"description": "Question", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/llm.ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/llm.ChatResponse"}},
                    "400": {"description": "Bad request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Store not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "429": {"description": "Rate limited", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "analytics.CategoryGrowth": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "growth_pct": {"type": "number"}
            }
        },
        "analytics.DemandForecast": {
            "type": "object",
            "properties": {
                "adjustment_factors": {"type": "array", "items": {"type": "string"}},
                "category": {"type": "string"},
                "competition_factor": {"type": "number"},
                "confidence_level": {"type": "number"},
                "forecast_date": {"type": "string"},
                "predicted_demand": {"type": "number"},
                "seasonal_factor": {"type": "number"},
                "trend_factor": {"type": "number"},
                "weather_factor": {"type": "number"}
            }
        },
        "analytics.InventoryRecommendation": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "current_stock": {"type": "integer"},
                "daily_velocity": {"type": "number"},
                "estimated_overstock_cost": {"type": "number"},
                "estimated_stockout_risk": {"type": "number"},
                "reasoning": {"type": "string"},
                "recommended_stock": {"type": "integer"},
                "reorder_quantity": {"type": "integer"},
                "reorder_urgency": {"type": "string", "enum": ["none", "low", "medium", "high", "critical"]},
                "seasonal_factors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "analytics.SalesTrend": {
            "type": "object",
            "properties": {
                "average_daily_sales": {"type": "number"},
                "days": {"type": "integer"},
                "peak_sales_day": {"type": "string"},
                "peak_sales_period": {"type": "string", "enum": ["Morning", "Afternoon", "Evening", "Night"]},
                "period_end": {"type": "string"},
                "period_start": {"type": "string"},
                "sales_growth": {"type": "number"},
                "store_id": {"type": "string"},
                "total_sales": {"type": "number"},
                "trending_categories": {"type": "array", "items": {"$ref": "#/definitions/analytics.CategoryGrowth"}},
                "underperforming_categories": {"type": "array", "items": {"$ref": "#/definitions/analytics.CategoryGrowth"}}
            }
        },
        "handlers.ForecastResponse": {
            "type": "object",
            "properties": {
                "forecasts": {"type": "array", "items": {"$ref": "#/definitions/analytics.DemandForecast"}},
                "store_id": {"type": "string"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "status": {"type": "string"},
                "stores": {"type": "integer"}
            }
        },
        "handlers.InsightsResponse": {
            "type": "object",
            "properties": {
                "insights": {"type": "array", "items": {"$ref": "#/definitions/insights.Insight"}},
                "store_id": {"type": "string"},
                "total": {"type": "integer"}
            }
        },
        "handlers.InventoryResponse": {
            "type": "object",
            "properties": {
                "recommendations": {"type": "array", "items": {"$ref": "#/definitions/analytics.InventoryRecommendation"}},
                "store_id": {"type": "string"}
            }
        },
        "handlers.ProximityListResponse": {
            "type": "object",
            "properties": {
                "radius_km": {"type": "number"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/handlers.ProximityResponse"}}
            }
        },
        "handlers.ProximityResponse": {
            "type": "object",
            "properties": {
                "chain_summary": {"type": "array", "items": {"$ref": "#/definitions/proximity.ChainSummary"}},
                "closest_competitor": {"$ref": "#/definitions/proximity.CompetitorDistance"},
                "competitors": {"type": "array", "items": {"$ref": "#/definitions/proximity.CompetitorDistance"}},
                "competitors_by_chain": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/proximity.CompetitorDistance"}}},
                "computed_at": {"type": "string"},
                "home_store_id": {"type": "string"},
                "radius_km": {"type": "number"}
            }
        },
        "handlers.StoresResponse": {
            "type": "object",
            "properties": {
                "stores": {"type": "array", "items": {"$ref": "#/definitions/stores.Store"}},
                "total": {"type": "integer"}
            }
        },
        "handlers.UpdateStoreRequest": {
            "type": "object",
            "properties": {
                "is_active": {"type": "boolean"},
                "location": {"$ref": "#/definitions/stores.GeoLocation"}
            }
        },
        "insights.Insight": {
            "type": "object",
            "properties": {
                "category": {"type": "string", "enum": ["sales", "inventory", "competition", "weather", "operations", "customer"]},
                "confidence_score": {"type": "number"},
                "created_at": {"type": "string"},
                "data_sources": {"type": "array", "items": {"type": "string"}},
                "description": {"type": "string"},
                "expires_at": {"type": "string"},
                "impact": {"type": "string"},
                "insight_id": {"type": "string"},
                "priority": {"type": "string", "enum": ["low", "medium", "high", "critical"]},
                "recommended_actions": {"type": "array", "items": {"type": "string"}},
                "store_id": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "llm.ChatRequest": {
            "type": "object",
            "required": ["message", "store_id"],
            "properties": {
                "message": {"type": "string"},
                "session_id": {"type": "string"},
                "store_id": {"type": "string"}
            }
        },
        "llm.ChatResponse": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"},
                "capabilities": {"type": "array", "items": {"type": "string"}},
                "context": {"type": "string"},
                "session_id": {"type": "string"},
                "source": {"type": "string", "enum": ["gemini", "fallback"]}
            }
        },
        "proximity.ChainSummary": {
            "type": "object",
            "properties": {
                "chain": {"type": "string"},
                "count": {"type": "integer"},
                "nearest_km": {"type": "number"}
            }
        },
        "proximity.CompetitorDistance": {
            "type": "object",
            "properties": {
                "distance_km": {"type": "number"},
                "store": {"$ref": "#/definitions/stores.Store"}
            }
        },
        "stores.GeoLocation": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "city": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "pincode": {"type": "string"},
                "state": {"type": "string"}
            }
        },
        "stores.Store": {
            "type": "object",
            "properties": {
                "chain": {"type": "string"},
                "is_active": {"type": "boolean"},
                "location": {"$ref": "#/definitions/stores.GeoLocation"},
                "name": {"type": "string"},
                "opening_hours": {"type": "string"},
                "size_sqft": {"type": "integer"},
                "store_id": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "weather.Snapshot": {
            "type": "object",
            "properties": {
                "condition": {"type": "string"},
                "description": {"type": "string"},
                "humidity": {"type": "integer"},
                "location": {"type": "string"},
                "observed_at": {"type": "string"},
                "period": {"type": "string", "enum": ["Morning", "Afternoon", "Evening", "Night"]},
                "temperature_celsius": {"type": "number"}
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
	Title:            "Insight Service API",
	Description:      "Competitor proximity, sales trends, inventory advice, demand forecasts and prioritised insights for the home store network.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
