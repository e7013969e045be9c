package domain

import "errors"

var (
	// ErrMalformedRecord marca un registro con hora, clave, NRC o docente ilegibles.
	ErrMalformedRecord = errors.New("registro malformado")
	// ErrInvalidWeekday marca un código de día fuera de L, A, M, J, V, S.
	ErrInvalidWeekday = errors.New("código de día inválido")
	// ErrDimensionResolution indica que un hecho referencia una llave natural sin id asignado.
	ErrDimensionResolution = errors.New("llave de dimensión sin resolver")
)
