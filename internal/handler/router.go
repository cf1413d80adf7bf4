package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/restaurant-orders/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса заказов.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(chimw.Recoverer)
	r.Use(custommiddleware.Compression(5, "application/json", "text/csv", "text/plain"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/session", h.StartSession)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.ListOrders)
				r.Post("/", h.CreateOrder)
				r.Get("/export", h.ExportOrders)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetOrder)
					r.Patch("/status", h.UpdateStatus)
					r.Put("/waiter", h.AssignWaiter)
					r.Put("/chef", h.AssignChef)
					r.Post("/items", h.AddItem)
					r.Patch("/items/{itemID}", h.SetItemQuantity)
					r.Delete("/items/{itemID}", h.RemoveItem)
				})
			})

			r.Route("/staff", func(r chi.Router) {
				r.Get("/", h.ListStaff)
				r.Get("/summary", h.StaffSummary)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetStaff)
					r.Post("/tasks", h.AddChefTask)
					r.Post("/tasks/{taskID}/start", h.StartChefTask)
					r.Post("/tasks/{taskID}/complete", h.CompleteChefTask)
					r.Put("/leave/{requestID}", h.DecideLeave)
				})
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", h.Customers)
				r.Get("/{id}", h.GetCustomer)
				r.Post("/{id}/visits", h.RecordVisit)
				r.Put("/{id}/tier", h.UpgradeTier)
			})

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", h.ListCampaigns)
				r.Get("/{id}", h.GetCampaign)
				r.Patch("/{id}/status", h.AdvanceCampaign)
			})

			r.Get("/metrics/orders", h.OrderMetrics)
			r.Get("/metrics/dashboard", h.Dashboard)
			r.Get("/metrics/campaigns", h.CampaignMetrics)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
