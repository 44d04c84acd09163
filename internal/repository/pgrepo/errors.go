package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	numericOutOfRangeCode   = "22003"
)

// convertErr приводит ошибку к стандартному виду для слоя репозитория.
// Добавляет форматированное сообщение контекста, тип бизнес-ошибки и оригинальное сообщение.
//   - pgx.ErrNoRows -> domain.ErrRecordNotFound.
//   - нарушение уникальности -> domain.ErrDuplicateKey.
//   - нарушение внешнего ключа (ссылка на несуществующую запись) -> domain.ErrRecordNotFound.
//   - переполнение NUMERIC и нарушение CHECK -> domain.ErrValidation без текста postgres.
//   - все остальное -> domain.ErrUnknown с оригинальным сообщением.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	errType := domain.ErrUnknown

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case foreignKeyViolationCode:
			errType = domain.ErrRecordNotFound
		case checkViolationCode, numericOutOfRangeCode:
			// текст postgres с именами ограничений наружу не отдаем
			return fmt.Errorf("[repository/%s] %w: value is out of range", msg, domain.ErrValidation)
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
