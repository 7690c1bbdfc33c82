// Package docs は /swagger で配信する API ドキュメント。
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
        "/authors": {
            "get": {"tags": ["authors"], "summary": "List authors", "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/authors.AuthorListItem"}}}}},
            "post": {"tags": ["authors"], "summary": "Create author",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/authors.CreateAuthorRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}}}
        },
        "/authors/{id}": {
            "get": {"tags": ["authors"], "summary": "Get author with books", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}}},
            "patch": {"tags": ["authors"], "summary": "Update author", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}}}},
            "delete": {"tags": ["authors"], "summary": "Delete author and its book associations", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}}}}
        },
        "/books": {
            "get": {"tags": ["books"], "summary": "List books with authors and availability", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["books"], "summary": "Create book",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/books.CreateBookRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}}}
        },
        "/books/{id}": {
            "get": {"tags": ["books"], "summary": "Get book with loan history", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}}},
            "patch": {"tags": ["books"], "summary": "Update book", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}}}},
            "delete": {"tags": ["books"], "summary": "Delete book with its loans and associations", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}}}}
        },
        "/books/{id}/authors/{author_id}": {
            "post": {"tags": ["books"], "summary": "Associate author with book", "parameters": [{"$ref": "#/parameters/id"}, {"in": "path", "name": "author_id", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}}, "400": {"description": "Already associated", "schema": {"$ref": "#/definitions/Error"}}}},
            "delete": {"tags": ["books"], "summary": "Dissociate author from book", "parameters": [{"$ref": "#/parameters/id"}, {"in": "path", "name": "author_id", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}}, "404": {"description": "Not associated", "schema": {"$ref": "#/definitions/Error"}}}}
        },
        "/members": {
            "get": {"tags": ["members"], "summary": "List members with active loan counts", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["members"], "summary": "Create member",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/members.CreateMemberRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}}}
        },
        "/members/{id}": {
            "get": {"tags": ["members"], "summary": "Get member with loans", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}}},
            "patch": {"tags": ["members"], "summary": "Update member", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}}}},
            "delete": {"tags": ["members"], "summary": "Delete member and its loans", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}}}}
        },
        "/loans": {
            "get": {"tags": ["loans"], "summary": "List loans",
                "parameters": [
                    {"in": "query", "name": "status", "type": "string", "enum": ["active", "returned"]},
                    {"in": "query", "name": "book_id", "type": "integer"},
                    {"in": "query", "name": "member_id", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["loans"], "summary": "Lend a book",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loans.CreateLoanRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Already on loan or period too long", "schema": {"$ref": "#/definitions/Error"}}, "404": {"description": "Book or member not found", "schema": {"$ref": "#/definitions/Error"}}}}
        },
        "/loans/{id}": {
            "get": {"tags": ["loans"], "summary": "Get loan by id or reference", "parameters": [{"$ref": "#/parameters/loanKey"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}}},
            "patch": {"tags": ["loans"], "summary": "Update due or return date",
                "parameters": [{"$ref": "#/parameters/loanKey"}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loans.UpdateLoanRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}}},
            "delete": {"tags": ["loans"], "summary": "Delete loan", "parameters": [{"$ref": "#/parameters/loanKey"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}}}}
        },
        "/loans/{id}/return": {
            "post": {"tags": ["loans"], "summary": "Return a book", "parameters": [{"$ref": "#/parameters/loanKey"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Book already returned", "schema": {"$ref": "#/definitions/Error"}}}}
        }
    },
    "parameters": {
        "id": {"in": "path", "name": "id", "required": true, "type": "integer"},
        "loanKey": {"in": "path", "name": "id", "required": true, "type": "string", "description": "numeric id or ULID reference"}
    },
    "definitions": {
        "Error": {"type": "object", "properties": {"error": {"type": "string"}}},
        "Message": {"type": "object", "properties": {"message": {"type": "string"}}},
        "authors.AuthorListItem": {"type": "object", "properties": {
            "id": {"type": "integer"}, "name": {"type": "string"},
            "birth_date": {"type": "string", "example": "1903-06-25"}, "book_count": {"type": "integer"}}},
        "authors.CreateAuthorRequest": {"type": "object", "required": ["name"], "properties": {
            "name": {"type": "string"}, "birth_date": {"type": "string", "example": "1903-06-25"}}},
        "books.CreateBookRequest": {"type": "object", "required": ["title"], "properties": {
            "title": {"type": "string"}, "isbn": {"type": "string"},
            "publication_date": {"type": "string", "example": "1949-06-08"},
            "author_ids": {"type": "array", "items": {"type": "integer"}}}},
        "members.CreateMemberRequest": {"type": "object", "required": ["name", "email"], "properties": {
            "name": {"type": "string"}, "email": {"type": "string", "format": "email"}}},
        "loans.CreateLoanRequest": {"type": "object", "required": ["book_id", "member_id"], "properties": {
            "book_id": {"type": "integer"}, "member_id": {"type": "integer"},
            "loan_days": {"type": "integer", "default": 14, "maximum": 30}}},
        "loans.UpdateLoanRequest": {"type": "object", "properties": {
            "due_date": {"type": "string", "example": "2024-01-29"},
            "return_date": {"type": "string", "example": "2024-01-20"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Library API",
	Description:      "Books, authors, members and loans of a small library.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
