package dto

type LoginDTO struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponseDTO struct {
	AccessToken string       `json:"access_token"`
	User        ShortUserDTO `json:"user"`
}
