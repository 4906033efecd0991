package transport

import "github.com/fastygo/storecore/domain"

type SearchRequest struct {
	SearchTerm string `json:"searchTerm" validate:"required"`
}

// PurchaseRequest accepts product as "7", "7,12", 7 or ["7", 12].
type PurchaseRequest struct {
	User    string            `json:"user" validate:"required"`
	Product domain.ProductRef `json:"product" validate:"required"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type VerifyRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProvisionRequest struct {
	Name  string `json:"name" validate:"max=200"`
	Email string `json:"email" validate:"required,email"`
}
