package memoria

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

type metricasProm struct {
	operaciones       *prometheus.CounterVec
	fallosPagina      prometheus.Counter
	paginasReservadas prometheus.Gauge
	marcosOcupados    prometheus.Gauge
	procesosActivos   prometheus.Gauge
}

func nuevasMetricasProm(reg prometheus.Registerer) (*metricasProm, error) {
	m := &metricasProm{
		operaciones: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memoria_operaciones_total",
			Help: "Operaciones atendidas por el kernel, por tipo y resultado (ok, error, fatal).",
		}, []string{"op", "resultado"}),
		fallosPagina: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memoria_fallos_pagina_total",
			Help: "Fallos de página resueltos asignando un marco.",
		}),
		paginasReservadas: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memoria_paginas_reservadas",
			Help: "Páginas reservadas por control de admisión.",
		}),
		marcosOcupados: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memoria_marcos_ocupados",
			Help: "Marcos físicos marcados como ocupados.",
		}),
		procesosActivos: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memoria_procesos_activos",
			Help: "Slots de proceso en ejecución.",
		}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.operaciones, m.fallosPagina, m.paginasReservadas, m.marcosOcupados, m.procesosActivos,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// cerrarOperacion se difiere al inicio de cada operación pública. Si la
// operación termina por un panic se cuenta como "fatal" y el panic sigue su curso.
func (m *metricasProm) cerrarOperacion(op string, err *error) {
	if r := recover(); r != nil {
		m.operaciones.WithLabelValues(op, "fatal").Inc()
		panic(r)
	}
	resultado := "ok"
	if *err != nil {
		resultado = "error"
	}
	m.operaciones.WithLabelValues(op, resultado).Inc()
}

// metricasDe devuelve las métricas del proceso, creándolas si hace falta
func (k *Kernel) metricasDe(pid int) *MetricasProceso {
	if _, existe := k.metricasPorProceso[pid]; !existe {
		k.metricasPorProceso[pid] = &MetricasProceso{}
	}
	return k.metricasPorProceso[pid]
}

// Metricas devuelve una copia de las métricas acumuladas del proceso
func (k *Kernel) Metricas(pid int) (MetricasProceso, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, existe := k.metricasPorProceso[pid]
	if !existe {
		return MetricasProceso{}, false
	}
	return *m, true
}

func (m MetricasProceso) String() string {
	return fmt.Sprintf("ATP;%d;Fallos;%d;LecMem;%d;EscMem;%d",
		m.AccesosTablasPaginas, m.FallosPagina, m.LecturasMemoria, m.EscriturasMemoria)
}
