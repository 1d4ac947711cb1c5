package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"supashop-api/pkg/apierror"
)

var errNoRows = pgx.ErrNoRows

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

// classify maps store errors onto the API taxonomy. notFound is the message
// used when the row is absent; op names the operation for wrapped errors.
func classify(err error, op string, notFound string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apierror.NotFound(notFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apierror.Conflict(conflictMessage(pgErr.ConstraintName))
		case pgForeignKeyViolation:
			return apierror.NotFound(referenceMessage(pgErr.ConstraintName))
		case pgInvalidText:
			// Malformed uuid in a lookup: nothing can match it.
			return apierror.NotFound(notFound)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func conflictMessage(constraint string) string {
	switch {
	case strings.HasSuffix(constraint, "_email_key"):
		return "Email already exist"
	case strings.HasSuffix(constraint, "_username_key"):
		return "Username already exist"
	case strings.HasPrefix(constraint, "wishlist_items"):
		return "Product already in wishlist"
	case strings.HasPrefix(constraint, "cart_items"):
		return "Product already in cart"
	default:
		return "Resource already exist"
	}
}

func referenceMessage(constraint string) string {
	switch {
	case strings.Contains(constraint, "product_id"):
		return "Product not found"
	case strings.Contains(constraint, "merchant_id"):
		return "Merchant not found"
	case strings.Contains(constraint, "user_id"):
		return "User not found"
	default:
		return "Referenced resource not found"
	}
}
