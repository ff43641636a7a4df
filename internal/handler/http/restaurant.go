package http

import (
	"net/http"

	"github.com/easyreserv/attendance-backend-go/internal/domain/restaurant"
	"github.com/easyreserv/attendance-backend-go/internal/handler/http/response"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/qrcode"
	"github.com/go-chi/chi/v5"
)

type RestaurantHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	GetQRPayload(w http.ResponseWriter, r *http.Request)
}

type restaurantHandlerImpl struct {
	restaurantRepo restaurant.RestaurantRepository
	qrService      qrcode.Service
}

func NewRestaurantHandler(restaurantRepo restaurant.RestaurantRepository, qrService qrcode.Service) RestaurantHandler {
	return &restaurantHandlerImpl{
		restaurantRepo: restaurantRepo,
		qrService:      qrService,
	}
}

type restaurantResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   *string  `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Get implements RestaurantHandler.
func (h *restaurantHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	site, err := h.restaurantRepo.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, restaurantResponse{
		ID:        site.ID,
		Name:      site.Name,
		Address:   site.Address,
		Latitude:  site.Latitude,
		Longitude: site.Longitude,
	})
}

// GetQRPayload implements RestaurantHandler. The returned string is what the
// client renders as a QR image; rendering happens client-side.
func (h *restaurantHandlerImpl) GetQRPayload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	site, err := h.restaurantRepo.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	payload, err := h.qrService.Mint(site.ID)
	if err != nil {
		response.InternalServerError(w, "Failed to mint QR payload")
		return
	}

	response.Success(w, map[string]string{
		"restaurant_id": site.ID,
		"qr_payload":    payload,
	})
}
