package apperr

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// upstream message signatures from the identity provider.
var (
	invalidCredentialSignatures = []string{
		"Invalid login credentials",
		"INVALID_PASSWORD",
		"EMAIL_NOT_FOUND",
		"INVALID_LOGIN_CREDENTIALS",
		"INVALID_EMAIL",
	}
	alreadyRegisteredSignatures = []string{
		"User already registered",
		"EMAIL_EXISTS",
		"email-already-exists",
	}
	unconfirmedSignatures = []string{
		"Email not confirmed",
	}
)

// Translate maps err into the taxonomy. *Error values pass through untouched;
// recognized upstream signatures become operational errors and everything else
// collapses into a non-operational internal error that keeps err as its cause.
func Translate(err error) *Error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		e := Conflict("a record with this data already exists")
		e.Err = err
		return e
	}

	if isConnectionFailure(err) {
		return Database("database connection error", err)
	}

	msg := err.Error()
	switch {
	case containsAny(msg, unconfirmedSignatures):
		e := Unauthorized("please confirm your email before signing in")
		e.Err = err
		return e
	case containsAny(msg, invalidCredentialSignatures):
		e := Unauthorized("invalid credentials")
		e.Err = err
		return e
	case containsAny(msg, alreadyRegisteredSignatures):
		e := Conflict("the user is already registered")
		e.Err = err
		return e
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Internal("upstream request timed out", err)
	}

	return Internal("", err)
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return true
	}

	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
