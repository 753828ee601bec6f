package services

import (
	"net/http"

	"todoapi/app/models"
)

// Kind classifies the result of a todo operation.
type Kind int

const (
	KindOk Kind = iota
	KindCreated
	KindNoContent
	KindNotFound
	KindBadRequest
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindOk:
		return "ok"
	case KindCreated:
		return "created"
	case KindNoContent:
		return "no_content"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// StatusCode maps the kind onto its HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case KindOk:
		return http.StatusOK
	case KindCreated:
		return http.StatusCreated
	case KindNoContent:
		return http.StatusNoContent
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Outcome is the tagged result of a TodoService call. Item is set for Ok
// and Created on single-item operations, Items for List, Err for Error.
type Outcome struct {
	Kind  Kind
	Item  *models.TodoItem
	Items []models.TodoItem
	Err   error
}

func Ok(item *models.TodoItem) Outcome { return Outcome{Kind: KindOk, Item: item} }

func OkList(items []models.TodoItem) Outcome { return Outcome{Kind: KindOk, Items: items} }

func Created(item *models.TodoItem) Outcome { return Outcome{Kind: KindCreated, Item: item} }

func NoContent() Outcome { return Outcome{Kind: KindNoContent} }

func NotFound() Outcome { return Outcome{Kind: KindNotFound} }

func BadRequest() Outcome { return Outcome{Kind: KindBadRequest} }

func Failed(err error) Outcome { return Outcome{Kind: KindError, Err: err} }
