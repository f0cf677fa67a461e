// Package docs registers the OpenAPI document served under /swagger.
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a player",
                "parameters": [
                    {"description": "New player", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.RegisterInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Exchange credentials for a bearer token",
                "parameters": [
                    {"description": "Credentials", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.LoginInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.LoginResult"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Revoke the current token",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/users/ranking": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Leaderboard ordered by rating",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.UserRanking"}}}
                }
            }
        },
        "/users/{userID}/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Per-player match history with stored rating changes",
                "parameters": [{"type": "integer", "name": "userID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.MatchHistoryEntry"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/matches": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Full match history, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Match"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Validates the line-up, stores the match and moves the rating of all four players.\nNot idempotent: posting the same body twice records two matches.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Record a finished doubles match",
                "parameters": [
                    {"description": "Match result", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.SubmitMatchInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Match"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/matches/recent": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Most recent matches",
                "parameters": [{"type": "integer", "default": 10, "name": "limit", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Match"}}}
                }
            }
        },
        "/matches/projection": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Preview the rating change of a match without recording it",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.RatingProjection"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.errorBody": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "models.Participant": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer"},
                "username": {"type": "string"},
                "side": {"type": "string", "enum": ["winner", "loser"]}
            }
        },
        "models.Match": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "creator_id": {"type": "integer"},
                "winner_score": {"type": "integer"},
                "loser_score": {"type": "integer"},
                "date_played": {"type": "string"},
                "created_at": {"type": "string"},
                "winner_usernames": {"type": "array", "items": {"type": "string"}},
                "loser_usernames": {"type": "array", "items": {"type": "string"}},
                "winner_avg_rating": {"type": "number"},
                "loser_avg_rating": {"type": "number"},
                "elo_change_winner": {"type": "number"},
                "elo_change_loser": {"type": "number"},
                "winners": {"type": "array", "items": {"$ref": "#/definitions/models.Participant"}},
                "losers": {"type": "array", "items": {"$ref": "#/definitions/models.Participant"}}
            }
        },
        "models.MatchHistoryEntry": {
            "type": "object",
            "properties": {
                "match_id": {"type": "integer"},
                "is_winner": {"type": "boolean"},
                "score": {"type": "integer"},
                "opponent_score": {"type": "integer"},
                "opponent_usernames": {"type": "array", "items": {"type": "string"}},
                "elo_change": {"type": "number"},
                "date_played": {"type": "string"}
            }
        },
        "models.RatingProjection": {
            "type": "object",
            "properties": {
                "winner_avg_rating": {"type": "number"},
                "loser_avg_rating": {"type": "number"},
                "elo_change_winner": {"type": "number"},
                "elo_change_loser": {"type": "number"},
                "projected_ratings": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "rating": {"type": "number"},
                "bio": {"type": "string"},
                "picture": {"type": "string"},
                "avatar_url": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "models.UserRanking": {
            "type": "object",
            "properties": {
                "rank": {"type": "integer"},
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "rating": {"type": "number"}
            }
        },
        "services.LoginInput": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "services.LoginResult": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/models.User"},
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_at": {"type": "integer"}
            }
        },
        "services.RegisterInput": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "bio": {"type": "string"},
                "picture": {"type": "string"}
            }
        },
        "services.SubmitMatchInput": {
            "type": "object",
            "properties": {
                "winners": {"type": "array", "items": {"type": "integer"}},
                "losers": {"type": "array", "items": {"type": "integer"}},
                "winner_score": {"type": "integer"},
                "loser_score": {"type": "integer"},
                "date_played": {"type": "string", "example": "2024-05-01"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Badminton Elo API",
	Description:      "Doubles match ingestion and Elo ratings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
