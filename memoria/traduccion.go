package memoria

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

type sentidoCopia int

const (
	haciaBuffer  sentidoCopia = iota // lectura: memoria -> buf
	haciaMemoria                     // escritura: buf -> memoria
)

func (s sentidoCopia) String() string {
	if s == haciaBuffer {
		return "Lectura"
	}
	return "Escritura"
}

// Leer copia [dir, dir+tamanio) del espacio del proceso a buf.
// Las páginas no presentes se resuelven con un fallo de página.
func (k *Kernel) Leer(pid int, dir DirVirtual, tamanio int, buf []byte) error {
	return k.acceder(pid, dir, tamanio, buf, haciaBuffer)
}

// Escribir copia buf[:tamanio] a [dir, dir+tamanio) del espacio del proceso.
func (k *Kernel) Escribir(pid int, dir DirVirtual, tamanio int, buf []byte) error {
	return k.acceder(pid, dir, tamanio, buf, haciaMemoria)
}

func (k *Kernel) acceder(pid int, dir DirVirtual, tamanio int, buf []byte, sentido sentidoCopia) (err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	op := "leer"
	if sentido == haciaMemoria {
		op = "escribir"
	}
	defer k.prom.cerrarOperacion(op, &err)

	if err := k.verificarLimites(pid, dir, tamanio, buf); err != nil {
		k.log.Warn("Acceso rechazado", "pid", pid, "dir_logica", int(dir), "tamanio", tamanio, "error", err)
		return err
	}

	k.recorrer(pid, dir, tamanio, buf, sentido)

	metricas := k.metricasDe(pid)
	if sentido == haciaBuffer {
		metricas.LecturasMemoria++
	} else {
		metricas.EscriturasMemoria++
	}

	k.log.Info(fmt.Sprintf("## PID: %d - %s - Dir Lógica: %d - Tamaño: %d", pid, sentido, dir, tamanio))
	return nil
}

// recorrer procesa el rango ya validado página por página. Cada página no
// presente se mapea al primer marco libre antes de copiar.
func (k *Kernel) recorrer(pid int, dir DirVirtual, tamanio int, buf []byte, sentido sentidoCopia) {
	tabla := k.espacios[pid].Tabla
	metricas := k.metricasDe(pid)

	for hecho := 0; hecho < tamanio; {
		actual := dir + DirVirtual(hecho)
		pagina := k.paginaDe(actual)
		entrada := &tabla.Entradas[pagina]
		metricas.AccesosTablasPaginas++

		if !entrada.Presente {
			entrada.Marco = k.asignarMarco(pid)
			entrada.Presente = true
			metricas.FallosPagina++
			k.prom.fallosPagina.Inc()
			k.prom.marcosOcupados.Inc()
			k.log.Info(fmt.Sprintf("## PID: %d - Fallo de Página - Página: %d - Marco: %d", pid, pagina, entrada.Marco))
		}

		// Bytes restantes dentro de esta página
		n := k.config.PageSize - int(actual)%k.config.PageSize
		if n > tamanio-hecho {
			n = tamanio - hecho
		}

		fisica := int(k.dirFisica(entrada.Marco, actual))
		marco := k.memoriaPrincipal[fisica : fisica+n]
		if sentido == haciaBuffer {
			copy(buf[hecho:hecho+n], marco)
		} else {
			copy(marco, buf[hecho:hecho+n])
		}
		hecho += n
	}
}

// Marco devuelve el marco asignado a la página sin provocar un fallo de página.
// Devuelve MarcoInvalido si la página todavía no está presente.
func (k *Kernel) Marco(pid int, pagina Pagina) (Marco, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.pidValido(pid) {
		return MarcoInvalido, errors.Wrapf(ErrProcesoInvalido, "pid %d", pid)
	}
	entradas := k.espacios[pid].Tabla.Entradas
	if pagina < 0 || int(pagina) >= len(entradas) {
		return MarcoInvalido, errors.Wrapf(ErrFueraDeRango, "pid %d: página %d de %d", pid, pagina, len(entradas))
	}
	k.metricasDe(pid).AccesosTablasPaginas++

	entrada := entradas[pagina]
	if !entrada.Presente {
		return MarcoInvalido, nil
	}
	return entrada.Marco, nil
}

// Volcar devuelve el contenido comprometido del proceso. Las páginas no
// presentes se leen como ceros y no se les asigna marco.
func (k *Kernel) Volcar(pid int) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.pidValido(pid) {
		return nil, errors.Wrapf(ErrProcesoInvalido, "pid %d", pid)
	}

	espacio := k.espacios[pid]
	contenido := make([]byte, espacio.Tamanio)
	for i, entrada := range espacio.Tabla.Entradas {
		if !entrada.Presente {
			continue
		}
		inicio := i * k.config.PageSize
		fin := min(inicio+k.config.PageSize, espacio.Tamanio)
		fisica := int(k.dirFisica(entrada.Marco, 0))
		copy(contenido[inicio:fin], k.memoriaPrincipal[fisica:fisica+fin-inicio])
	}

	k.log.Info(fmt.Sprintf("## PID: %d - Memory Dump solicitado", pid))
	return contenido, nil
}
