package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"explorewithme/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	eventController *controllers.EventController,
	requestController *controllers.RequestController,
	ratingController *controllers.RatingController,
	userController *controllers.UserController,
	categoryController *controllers.CategoryController,
	compilationController *controllers.CompilationController,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Initiator routes
	mux.HandleFunc("POST /users/{userID}/events", eventController.Create)
	mux.HandleFunc("GET /users/{userID}/events", eventController.ListUserEvents)
	mux.HandleFunc("GET /users/{userID}/events/{eventID}", eventController.GetUserEvent)
	mux.HandleFunc("PATCH /users/{userID}/events/{eventID}", eventController.UpdateByUser)
	mux.HandleFunc("GET /users/{userID}/events/{eventID}/requests", requestController.ListEventRequests)
	mux.HandleFunc("PATCH /users/{userID}/events/{eventID}/requests", requestController.ChangeStatus)

	// Participation requests
	mux.HandleFunc("POST /users/{userID}/requests", requestController.Join)
	mux.HandleFunc("GET /users/{userID}/requests", requestController.ListUserRequests)
	mux.HandleFunc("PATCH /users/{userID}/requests/{requestID}/cancel", requestController.Cancel)

	// Ratings
	mux.HandleFunc("PUT /users/{userID}/ratings/{eventID}", ratingController.Rate)
	mux.HandleFunc("GET /users/{userID}/ratings/{eventID}", ratingController.GetUserRating)
	mux.HandleFunc("DELETE /users/{userID}/ratings/{eventID}", ratingController.DeleteRating)

	// Public routes
	mux.HandleFunc("GET /events", eventController.SearchPublic)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetPublic)
	mux.HandleFunc("GET /events/{eventID}/rating", ratingController.GetEventRating)
	mux.HandleFunc("GET /categories", categoryController.List)
	mux.HandleFunc("GET /categories/{catID}", categoryController.GetByID)
	mux.HandleFunc("GET /compilations", compilationController.List)
	mux.HandleFunc("GET /compilations/{compID}", compilationController.GetByID)

	// Admin routes
	mux.HandleFunc("GET /admin/events", eventController.SearchAdmin)
	mux.HandleFunc("PATCH /admin/events/{eventID}", eventController.UpdateByAdmin)
	mux.HandleFunc("POST /admin/users", userController.Create)
	mux.HandleFunc("GET /admin/users", userController.List)
	mux.HandleFunc("DELETE /admin/users/{userID}", userController.Delete)
	mux.HandleFunc("POST /admin/categories", categoryController.Create)
	mux.HandleFunc("PATCH /admin/categories/{catID}", categoryController.Update)
	mux.HandleFunc("DELETE /admin/categories/{catID}", categoryController.Delete)
	mux.HandleFunc("POST /admin/compilations", compilationController.Create)
	mux.HandleFunc("PATCH /admin/compilations/{compID}", compilationController.Update)
	mux.HandleFunc("DELETE /admin/compilations/{compID}", compilationController.Delete)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
