package repository

import (
	"errors"

	"farelock/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func wrapQueryErr(msg string, err error) error {
	switch {
	case isNoRows(err):
		return infra.WrapRepoErr(msg, err, infra.KindNotFound)
	case isDuplicateKey(err):
		return infra.WrapRepoErr(msg, err, infra.KindDuplicateKey)
	default:
		return infra.WrapRepoErr(msg, err)
	}
}
