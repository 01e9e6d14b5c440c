package domain

import "errors"

var (
	ErrSendingReplyFailed     = errors.New("failed to send reply")
	ErrInvalidIdentifiers     = errors.New("invalid identifier input")
	ErrCompanyNotFound        = errors.New("company not found")
	ErrCommandNotFound        = errors.New("command not found")
	ErrRegistryNotInitialized = errors.New("can't fetch command, registry not initialized")
)
