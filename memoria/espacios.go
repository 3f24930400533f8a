package memoria

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// CrearEspacio reserva un espacio de direcciones de tamanio bytes y devuelve su pid.
//
// Las verificaciones se hacen en orden (slot libre, límite virtual, reserva
// global) y ninguna modifica el estado; si alguna falla se devuelve ErrAdmision.
// Las entradas de la tabla arrancan no presentes: los marcos se asignan recién
// en el primer acceso a cada página.
func (k *Kernel) CrearEspacio(tamanio int) (pid int, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	defer k.prom.cerrarOperacion("crear", &err)

	pid = k.buscarPidLibre()
	if pid == -1 {
		k.log.Warn("No hay slots de proceso libres", "max_procesos", k.config.MaxProcesses)
		return -1, errors.Wrapf(ErrAdmision, "no hay slots libres (%d en uso)", k.config.MaxProcesses)
	}

	if tamanio < 0 || tamanio > k.config.VirtualSpaceSize {
		k.log.Warn("Tamaño fuera del espacio virtual", "tamanio", tamanio, "maximo", k.config.VirtualSpaceSize)
		return -1, errors.Wrapf(ErrAdmision, "tamaño %d fuera de [0, %d]", tamanio, k.config.VirtualSpaceSize)
	}

	paginas := k.config.paginasNecesarias(tamanio)
	// TAM_PAGINA*(reservadas+paginas) > TAM_MEMORIA, expresado en marcos para no desbordar
	if paginas > k.config.TotalMarcos()-k.paginasAsignadas {
		k.log.Warn("Reserva global insuficiente",
			"paginas_requeridas", paginas,
			"paginas_reservadas", k.paginasAsignadas,
			"tam_memoria", k.config.KernelSpaceSize)
		return -1, errors.Wrapf(ErrAdmision, "%d páginas más exceden la memoria física (%d reservadas)",
			paginas, k.paginasAsignadas)
	}

	k.espacios[pid] = EspacioDirecciones{
		Tamanio: tamanio,
		Tabla:   nuevaTablaPaginas(paginas),
	}
	k.ejecutando[pid] = true
	k.paginasAsignadas += paginas
	k.metricasPorProceso[pid] = &MetricasProceso{}
	k.actualizarGauges()

	k.log.Info(fmt.Sprintf("## PID: %d - Proceso Creado - Tamaño: %d", pid, tamanio))
	k.log.Info("Tabla de páginas creada", "pid", pid, "paginas", paginas, "paginas_reservadas", k.paginasAsignadas)

	return pid, nil
}

// FinalizarEspacio libera los marcos del proceso (dejándolos en cero), descuenta
// su reserva y devuelve el pid a los slots libres.
func (k *Kernel) FinalizarEspacio(pid int) (err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	defer k.prom.cerrarOperacion("finalizar", &err)

	if !k.pidValido(pid) {
		k.log.Warn("Finalización de proceso inexistente", "pid", pid)
		return errors.Wrapf(ErrProcesoInvalido, "pid %d", pid)
	}

	espacio := &k.espacios[pid]
	// La reserva se recalcula desde el tamaño, igual que en la creación.
	totalPaginas := k.config.paginasNecesarias(espacio.Tamanio)

	liberados := 0
	for i := 0; i < totalPaginas; i++ {
		entrada := &espacio.Tabla.Entradas[i]
		if entrada.Presente {
			k.liberarMarco(entrada.Marco)
			entrada.Presente = false
			entrada.Marco = MarcoInvalido
			liberados++
		}
	}

	k.paginasAsignadas -= totalPaginas
	espacio.Tabla = nil
	espacio.Tamanio = 0
	k.ejecutando[pid] = false

	metricas := k.metricasDe(pid)
	delete(k.metricasPorProceso, pid)
	k.actualizarGauges()

	k.log.Info(fmt.Sprintf("## PID: %d - Proceso Destruido - Métricas: %s", pid, metricas))
	k.log.Info("Memoria liberada completamente", "pid", pid, "marcos_liberados", liberados,
		"paginas_reservadas", k.paginasAsignadas)

	return nil
}
