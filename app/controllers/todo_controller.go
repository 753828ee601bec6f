package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"todoapi/app/models"
	"todoapi/app/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// TodoController handles HTTP requests for todo items.
type TodoController struct {
	Service *services.TodoService
	logger  *logrus.Logger
}

// NewTodoController creates a new TodoController.
func NewTodoController(service *services.TodoService, logger *logrus.Logger) *TodoController {
	if logger == nil {
		logger = logrus.New()
	}
	return &TodoController{Service: service, logger: logger}
}

// GetTodoItems handles GET /todoitems.
func (c *TodoController) GetTodoItems(w http.ResponseWriter, r *http.Request) {
	c.write(w, c.Service.List(r.Context()))
}

// GetTodoItem handles GET /todoitems/{id}.
func (c *TodoController) GetTodoItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c.write(w, c.Service.Get(r.Context(), id))
}

// PostTodoItem handles POST /todoitems.
func (c *TodoController) PostTodoItem(w http.ResponseWriter, r *http.Request) {
	item, ok := decodeTodoItem(w, r)
	if !ok {
		return
	}

	out := c.Service.Create(r.Context(), item)
	if out.Kind == services.KindCreated {
		w.Header().Set("Location", fmt.Sprintf("/todoitems/%d", out.Item.ID))
	}
	c.write(w, out)
}

// PutTodoItem handles PUT /todoitems/{id}.
func (c *TodoController) PutTodoItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, ok := decodeTodoItem(w, r)
	if !ok {
		return
	}
	c.write(w, c.Service.Update(r.Context(), id, item))
}

// DeleteTodoItem handles DELETE /todoitems/{id}.
func (c *TodoController) DeleteTodoItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c.write(w, c.Service.Delete(r.Context(), id))
}

// decodeTodoItem reads the request body. Empty, null and malformed
// bodies are rejected with 400.
func decodeTodoItem(w http.ResponseWriter, r *http.Request) (models.TodoItem, bool) {
	var item *models.TodoItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil || item == nil {
		w.WriteHeader(http.StatusBadRequest)
		return models.TodoItem{}, false
	}
	return *item, true
}

// pathID parses the {id} route variable. Routes only match digits, so a
// failure here means the value overflowed int64.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (c *TodoController) write(w http.ResponseWriter, out services.Outcome) {
	status := out.Kind.StatusCode()
	switch out.Kind {
	case services.KindOk, services.KindCreated:
		var body any = out.Item
		if out.Item == nil {
			body = out.Items
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			c.logger.WithError(err).Warn("failed to encode response")
		}
	case services.KindError:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": out.Err.Error()})
	default:
		w.WriteHeader(status)
	}
}
