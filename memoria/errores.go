package memoria

import "github.com/cockroachdb/errors"

var (
	// ErrAdmision: no hay slot libre, el tamaño excede el espacio virtual
	// o no alcanza la reserva global.
	ErrAdmision = errors.New("admisión rechazada")
	// ErrProcesoInvalido: el pid no corresponde a un slot en ejecución.
	ErrProcesoInvalido = errors.New("proceso inválido")
	// ErrFueraDeRango: el rango pedido excede el tamaño comprometido del proceso.
	ErrFueraDeRango = errors.New("dirección fuera de rango")
	// ErrBufferInsuficiente: el buffer del llamador es más corto que el tamaño pedido.
	ErrBufferInsuficiente = errors.New("buffer insuficiente")
)

// EsFallaFatal indica si el valor recuperado de un panic es una violación de
// invariante del kernel (memoria física agotada durante un fallo de página).
// Después de una falla fatal el estado del kernel no es confiable.
func EsFallaFatal(v any) bool {
	err, ok := v.(error)
	return ok && errors.IsAssertionFailure(err)
}
