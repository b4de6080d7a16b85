package dto

type ContactRequest struct {
	TenantSlug string `json:"tenant_slug" validate:"required,slug"`
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Phone      string `json:"phone" validate:"omitempty,max=50"`
	Subject    string `json:"subject" validate:"required,max=255"`
	Message    string `json:"message" validate:"required,max=5000"`
}

type ContactResponse struct {
	Delivered bool `json:"delivered"`
}
