package service

import "errors"

// ErrAuditDisabled indicates the request needs the database, which is not configured.
var ErrAuditDisabled = errors.New("audit log is disabled")

// ErrRefreshDisabled indicates asynchronous refresh is not configured.
var ErrRefreshDisabled = errors.New("asynchronous refresh is disabled")

// ErrInvalidRefreshID indicates the refresh ID format is invalid.
var ErrInvalidRefreshID = errors.New("invalid refresh_id")

// ErrNotFound indicates the requested resource was not found.
var ErrNotFound = errors.New("not found")

// ErrInternal indicates an internal server error.
var ErrInternal = errors.New("internal error")

// ErrInternalQueue indicates an internal queue error.
var ErrInternalQueue = errors.New("internal queue error")
