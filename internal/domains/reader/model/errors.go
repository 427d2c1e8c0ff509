package model

import "bookrental-backend/internal/shared/apperr"

var (
	ErrReaderNotFound     = apperr.New(apperr.KindNotFound, "READER_NOT_FOUND", "reader not found")
	ErrReaderInactive     = apperr.New(apperr.KindInvalidState, "READER_INACTIVE", "reader account is inactive")
	ErrPhoneAlreadyExists = apperr.New(apperr.KindConflict, "PHONE_ALREADY_EXISTS", "a reader with this phone number already exists")
	ErrEmailAlreadyExists = apperr.New(apperr.KindConflict, "EMAIL_ALREADY_EXISTS", "a reader with this email already exists")
)
