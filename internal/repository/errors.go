package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
)

// pqUniqueViolation is the SQLSTATE for unique_violation.
const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func notFound(entity, key string) error {
	return fmt.Errorf("%s %s: %w", entity, key, domain.ErrNotFound)
}
