package memoria

import (
	"github.com/cockroachdb/errors"
)

// asignarMarco busca el primer marco libre (first fit) y lo marca como ocupado.
//
// Si no queda ninguno entra en pánico: el control de admisión garantiza que
// nunca se reserven más páginas que marcos, así que quedarse sin marcos es
// una violación de invariante y no un error recuperable.
func (k *Kernel) asignarMarco(pid int) Marco {
	for i, ocupado := range k.marcosOcupados {
		if !ocupado {
			k.marcosOcupados[i] = true
			k.log.Debug("Marco asignado", "pid", pid, "marco", i)
			return Marco(i)
		}
	}

	k.log.Error("No hay marcos libres disponibles",
		"pid", pid,
		"paginas_reservadas", k.paginasAsignadas,
		"total_marcos", len(k.marcosOcupados))
	panic(errors.AssertionFailedf("memoria física agotada al resolver un fallo de página del proceso %d", pid))
}

// liberarMarco pone en cero el contenido del marco y lo devuelve al bitmap
func (k *Kernel) liberarMarco(marco Marco) {
	inicio := int(k.dirFisica(marco, 0))
	clear(k.memoriaPrincipal[inicio : inicio+k.config.PageSize])
	k.marcosOcupados[marco] = false
	k.log.Debug("Marco liberado", "marco", int(marco))
}

func (k *Kernel) contarMarcosOcupados() int {
	count := 0
	for _, ocupado := range k.marcosOcupados {
		if ocupado {
			count++
		}
	}
	return count
}
