package apperr

import (
	"errors"
	"fmt"
)

// Error = kegagalan domain dengan kode machine-readable + pesan utk client.
// Status dipakai httpx buat mapping ke HTTP status code.
type Error struct {
	Code      string
	Message   string
	Status    int
	Retryable bool
	Err       error
}

func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// Retryable menandai error yang aman di-retry oleh caller (conflict class).
func Retryable(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status, Retryable: true}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap: salin error + simpan penyebab (biar kode & status tetap sama).
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.Err = err
	return &clone
}

// Is: dua *Error dianggap sama kalau kodenya sama, supaya
// errors.Is(err, stock.ErrInsufficientStock) jalan walau sudah di-Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// CodeOf: ambil kode dari error apa pun ("" kalau bukan *Error).
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// StatusOf: HTTP status utk error ini, default 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 500
}
