package handler

import "strings"

type createUserRequest struct {
	Name   string `json:"name"   validate:"required"`
	Email  string `json:"email"  validate:"required,email"`
	Role   string `json:"role"   validate:"omitempty,oneof=user developer admin"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r *createUserRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.TrimSpace(r.Role)
	r.Status = strings.TrimSpace(r.Status)
}

// updateUserRequest carries a partial update: absent fields stay nil.
type updateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"  validate:"omitempty,email"`
	Role   *string `json:"role"   validate:"omitempty,oneof=user developer admin"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r *updateUserRequest) trim() {
	for _, p := range []*string{r.Name, r.Email, r.Role, r.Status} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}
