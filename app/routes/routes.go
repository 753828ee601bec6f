package routes

import (
	"net/http"

	"todoapi/app/controllers"
	"todoapi/app/metrics"
	"todoapi/app/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RegisterRoutes sets up the todo item routes.
func RegisterRoutes(router *mux.Router, todoController *controllers.TodoController) {
	router.HandleFunc("/todoitems", todoController.GetTodoItems).Methods(http.MethodGet)
	router.HandleFunc("/todoitems", todoController.PostTodoItem).Methods(http.MethodPost)
	router.HandleFunc("/todoitems/{id:[0-9]+}", todoController.GetTodoItem).Methods(http.MethodGet)
	router.HandleFunc("/todoitems/{id:[0-9]+}", todoController.PutTodoItem).Methods(http.MethodPut)
	router.HandleFunc("/todoitems/{id:[0-9]+}", todoController.DeleteTodoItem).Methods(http.MethodDelete)
}

// NewRouter builds the full application router with middleware, health
// and metrics endpoints. health and m may be nil.
func NewRouter(todoController *controllers.TodoController, health *controllers.HealthController, m *metrics.Metrics, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	if m != nil {
		router.Use(middleware.Metrics(m))
		router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}
	if health != nil {
		router.HandleFunc("/healthz", health.Health).Methods(http.MethodGet)
	}
	RegisterRoutes(router, todoController)
	return router
}
