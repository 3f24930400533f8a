package memoria

import (
	"math"

	"github.com/cockroachdb/errors"
)

// paginaDe devuelve el número de página virtual que contiene la dirección
func (k *Kernel) paginaDe(dir DirVirtual) Pagina {
	return Pagina(int(dir) / k.config.PageSize)
}

// dirFisica es el único punto de conversión virtual -> física:
// marco*TAM_PAGINA + (dir mod TAM_PAGINA)
func (k *Kernel) dirFisica(marco Marco, dir DirVirtual) DirFisica {
	return DirFisica(int(marco)*k.config.PageSize + int(dir)%k.config.PageSize)
}

// verificarLimites valida que el proceso esté en ejecución y que [dir, dir+tamanio)
// caiga dentro de [0, tamaño comprometido). Se llama antes de tocar cualquier byte.
func (k *Kernel) verificarLimites(pid int, dir DirVirtual, tamanio int, buf []byte) error {
	if !k.pidValido(pid) {
		return errors.Wrapf(ErrProcesoInvalido, "pid %d", pid)
	}
	if dir < 0 || tamanio < 0 || int(dir) > math.MaxInt-tamanio {
		return errors.Wrapf(ErrFueraDeRango, "pid %d: dirección %d, tamaño %d", pid, dir, tamanio)
	}

	comprometido := k.espacios[pid].Tamanio
	if int(dir)+tamanio > comprometido {
		return errors.Wrapf(ErrFueraDeRango, "pid %d: [%d, %d) excede el tamaño %d",
			pid, dir, int(dir)+tamanio, comprometido)
	}
	if len(buf) < tamanio {
		return errors.Wrapf(ErrBufferInsuficiente, "pid %d: buffer de %d bytes para %d", pid, len(buf), tamanio)
	}
	return nil
}
