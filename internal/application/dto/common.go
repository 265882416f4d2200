package dto

// PageRequest paginación para listados (page es 0-based, como espera la consola).
type PageRequest struct {
	Page int `query:"page"`
	Size int `query:"size"`
}

// Normalize aplica valores por defecto y topes.
func (p *PageRequest) Normalize() {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = 20
	}
	if p.Size > 100 {
		p.Size = 100
	}
}

// Offset devuelve el offset SQL equivalente.
func (p PageRequest) Offset() int { return p.Page * p.Size }

// Page es el sobre de paginación que consume la UI en todos los listados.
type Page struct {
	Content       any  `json:"content"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Size          int  `json:"size"`
	Number        int  `json:"number"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

// NewPage arma el sobre a partir del contenido, el total y la página pedida.
func NewPage(content any, total int, req PageRequest) Page {
	totalPages := 0
	if req.Size > 0 {
		totalPages = (total + req.Size - 1) / req.Size
	}
	return Page{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          req.Size,
		Number:        req.Page,
		First:         req.Page == 0,
		Last:          req.Page >= totalPages-1,
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Para InvalidTransition: estado actual e intentado, para que la UI explique.
	CurrentStatus   string `json:"currentStatus,omitempty"`
	AttemptedStatus string `json:"attemptedStatus,omitempty"`
}
