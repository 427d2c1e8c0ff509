package model

import "bookrental-backend/internal/shared/apperr"

var (
	ErrStaffNotFound      = apperr.New(apperr.KindNotFound, "STAFF_NOT_FOUND", "staff member not found")
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	ErrStaffInactive      = apperr.New(apperr.KindUnauthorized, "STAFF_INACTIVE", "staff account is disabled")
	ErrEmailAlreadyExists = apperr.New(apperr.KindConflict, "STAFF_EMAIL_EXISTS", "a staff member with this email already exists")
)
