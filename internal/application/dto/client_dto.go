package dto

// CreateClientRequest alta de cliente.
type CreateClientRequest struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

// UpdateClientRequest actualización parcial.
type UpdateClientRequest struct {
	Name     *string `json:"name"`
	Document *string `json:"document"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
}

// ClientResponse representación de salida de un cliente.
type ClientResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

// ClientListResponse listado paginado.
type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
