// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package account

// SafetyView is the redacted projection of an Account that is safe to return
// to callers and to store in a session. It carries no credential digest and
// no soft-delete bookkeeping. JSON field names follow the public API shape.
type SafetyView struct {
	ID         int64   `json:"id"`
	Handle     string  `json:"userAccount"`
	Name       string  `json:"username"`
	AvatarURL  *string `json:"avatarUrl"`
	Gender     *int    `json:"gender"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Status     int     `json:"userStatus"`
	Role       int     `json:"userRole"`
	PlanetCode string  `json:"planetCode"`
}

// Mask converts an Account into its SafetyView. Returns nil for nil input.
func Mask(a *Account) *SafetyView {
	if a == nil {
		return nil
	}
	return &SafetyView{
		ID:         a.ID,
		Handle:     a.Handle,
		Name:       a.Name,
		AvatarURL:  a.AvatarURL,
		Gender:     a.Gender,
		Phone:      a.Phone,
		Email:      a.Email,
		Status:     a.Status,
		Role:       a.Role,
		PlanetCode: a.PlanetCode,
	}
}
