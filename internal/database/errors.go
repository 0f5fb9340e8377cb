package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ConstraintKind classifies a store error into the categories the import
// pipeline handles differently: uniqueness gets one slug-regeneration retry,
// the rest skip the record with the constraint named in the error list.
type ConstraintKind int

const (
	ConstraintNone ConstraintKind = iota
	ConstraintUnique
	ConstraintForeignKey
	ConstraintNotNull
	ConstraintCheck
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintUnique:
		return "unique"
	case ConstraintForeignKey:
		return "foreign key"
	case ConstraintNotNull:
		return "not null"
	case ConstraintCheck:
		return "check"
	default:
		return "none"
	}
}

// ClassifyConstraint inspects driver errors from either backend.
// sqlite reports extended result codes, postgres reports SQLSTATE codes.
func ClassifyConstraint(err error) ConstraintKind {
	if err == nil {
		return ConstraintNone
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ConstraintUnique
		case sqlite3.ErrConstraintForeignKey:
			return ConstraintForeignKey
		case sqlite3.ErrConstraintNotNull:
			return ConstraintNotNull
		case sqlite3.ErrConstraintCheck:
			return ConstraintCheck
		}
		return ConstraintNone
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ConstraintUnique
		case "23503":
			return ConstraintForeignKey
		case "23502":
			return ConstraintNotNull
		case "23514":
			return ConstraintCheck
		}
		return ConstraintNone
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ConstraintUnique
	}

	return ConstraintNone
}
