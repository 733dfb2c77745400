package transport

import "github.com/Skotchmaster/storefront/internal/models"

// Error is the body of every non-2xx API response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string { return e.Code + ": " + e.Message }

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type AdvisorRequest struct {
	Query string `json:"query"`
}

type AdvisorResponse struct {
	Answer string `json:"answer"`
}

type SearchResponse struct {
	Total    int64            `json:"total"`
	Products []models.Product `json:"products"`
}
