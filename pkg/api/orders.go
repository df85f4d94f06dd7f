package api

import (
	"net/http"

	"gitlab.connectwisedev.com/storefront-service/models"
)

type trackRequest struct {
	Email   string `json:"email"`
	OrderID string `json:"order_id"`
}

type orderView struct {
	models.Order
	Summary string `json:"summary"`
}

func views(orders []models.Order) []orderView {
	out := make([]orderView, len(orders))
	for i, o := range orders {
		out[i] = orderView{Order: o, Summary: o.Describe()}
	}
	return out
}

func (s *Server) myOrders(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	list, err := s.Orders.ForUser(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views(list))
}

func (s *Server) trackOrder(w http.ResponseWriter, r *http.Request) {
	var in trackRequest
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	o, err := s.Orders.TrackGuest(r.Context(), in.Email, in.OrderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderView{Order: o, Summary: o.Describe()})
}
