package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation 23503: la fila sigue referenciada o la referencia no existe.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// isRetryableTxError deadlock_detected (40P01) o serialization_failure (40001).
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40P01" || pgErr.Code == "40001"
	}
	return false
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// columns lista blanca de campos filtrables: nombre lógico -> columna SQL.
type columns map[string]string

var sqlOps = map[repository.FilterOp]string{
	repository.OpEq:  "=",
	repository.OpNeq: "<>",
	repository.OpLt:  "<",
	repository.OpLte: "<=",
	repository.OpGt:  ">",
	repository.OpGte: ">=",
}

// buildWhere traduce los filtros a "AND col op $n" a partir de los args ya presentes.
// Un campo fuera de la lista blanca es ErrInvalidInput; nunca se interpola texto del usuario.
func buildWhere(q repository.ListQuery, cols columns, args []any) (string, []any, error) {
	var sb strings.Builder
	for _, f := range q.Filters {
		col, ok := cols[f.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: filtro %q no soportado", domain.ErrInvalidInput, f.Field)
		}
		args = append(args, f.Value)
		n := len(args)
		if f.Op == repository.OpLike {
			fmt.Fprintf(&sb, " AND %s::text ILIKE '%%' || $%d::text || '%%'", col, n)
			continue
		}
		op, ok := sqlOps[f.Op]
		if !ok {
			return "", nil, fmt.Errorf("%w: operador %q no soportado", domain.ErrInvalidInput, f.Op)
		}
		fmt.Fprintf(&sb, " AND %s %s $%d", col, op, n)
	}
	return sb.String(), args, nil
}

// pageClause ORDER BY id con LIMIT/OFFSET; Limit 0 lista todo.
func pageClause(q repository.ListQuery, idCol string, args []any) (string, []any) {
	clause := " ORDER BY " + idCol
	if q.Limit > 0 {
		args = append(args, q.Limit)
		clause += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		clause += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return clause, args
}

// notFoundIfNone convierte un comando sin filas afectadas en ErrNotFound.
func notFoundIfNone(tag pgconn.CommandTag, what string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

// lockIDs ejecuta un SELECT id ... FOR UPDATE y devuelve los ids bloqueados en el orden de la consulta.
// La consulta no debe llevar agregados: en READ COMMITTED su instantánea es anterior a la espera del
// bloqueo. Las sumas se leen después, en otra sentencia, con las filas ya bloqueadas.
func lockIDs(ctx context.Context, q Querier, query string, args ...any) ([]int64, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
