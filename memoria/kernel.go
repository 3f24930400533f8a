package memoria

import (
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// NuevoKernel crea un simulador con todos los slots libres, todos los marcos
// desocupados y ninguna página reservada. logger puede ser nil; reg también,
// en cuyo caso las métricas no se exportan.
func NuevoKernel(config Config, logger *slog.Logger, reg prometheus.Registerer) (*Kernel, error) {
	if err := config.Validar(); err != nil {
		return nil, errors.Wrap(err, "configuración de memoria inválida")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	prom, err := nuevasMetricasProm(reg)
	if err != nil {
		return nil, errors.Wrap(err, "registrando métricas de memoria")
	}

	k := &Kernel{
		config:             config,
		log:                logger,
		ejecutando:         make([]bool, config.MaxProcesses),
		espacios:           make([]EspacioDirecciones, config.MaxProcesses),
		memoriaPrincipal:   make([]byte, config.KernelSpaceSize),
		marcosOcupados:     make([]bool, config.TotalMarcos()),
		metricasPorProceso: make(map[int]*MetricasProceso),
		prom:               prom,
	}

	k.log.Info("Memoria inicializada",
		"tam_pagina", config.PageSize,
		"max_procesos", config.MaxProcesses,
		"tam_memoria_virtual", config.VirtualSpaceSize,
		"tam_memoria", config.KernelSpaceSize,
		"total_marcos", len(k.marcosOcupados))

	return k, nil
}

// Config devuelve las constantes con las que se creó el kernel
func (k *Kernel) Config() Config {
	return k.config
}

// Estado devuelve un resumen de reservas, marcos y procesos activos
func (k *Kernel) Estado() Estado {
	k.mu.Lock()
	defer k.mu.Unlock()

	ocupados := k.contarMarcosOcupados()
	estado := Estado{
		PaginasReservadas: k.paginasAsignadas,
		MarcosOcupados:    ocupados,
		MarcosLibres:      len(k.marcosOcupados) - ocupados,
		ProcesosActivos:   []int{},
	}
	for pid, activo := range k.ejecutando {
		if activo {
			estado.ProcesosActivos = append(estado.ProcesosActivos, pid)
		}
	}
	return estado
}

func (k *Kernel) actualizarGauges() {
	activos := 0
	for _, activo := range k.ejecutando {
		if activo {
			activos++
		}
	}
	k.prom.paginasReservadas.Set(float64(k.paginasAsignadas))
	k.prom.marcosOcupados.Set(float64(k.contarMarcosOcupados()))
	k.prom.procesosActivos.Set(float64(activos))
}
