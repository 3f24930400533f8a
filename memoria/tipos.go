package memoria

import (
	"log/slog"
	"sync"
)

// DirVirtual es un desplazamiento dentro del espacio de direcciones de un proceso
type DirVirtual int

// DirFisica es un desplazamiento dentro de la memoria principal simulada
type DirFisica int

// Pagina es un número de página virtual
type Pagina int

// Marco identifica una región de TAM_PAGINA bytes de la memoria principal
type Marco int

// MarcoInvalido se guarda en las entradas que no están presentes
const MarcoInvalido Marco = -1

// Valido indica si el marco referencia una región real de memoria
func (m Marco) Valido() bool {
	return m != MarcoInvalido
}

// EntradaTabla representa una entrada de la tabla de páginas
type EntradaTabla struct {
	Presente bool
	Marco    Marco
}

// TablaPaginas tiene una entrada por página virtual, indexada por número de página
type TablaPaginas struct {
	Entradas []EntradaTabla
}

func nuevaTablaPaginas(paginas int) *TablaPaginas {
	tabla := &TablaPaginas{
		Entradas: make([]EntradaTabla, paginas),
	}
	for i := range tabla.Entradas {
		tabla.Entradas[i] = EntradaTabla{Presente: false, Marco: MarcoInvalido}
	}
	return tabla
}

// EspacioDirecciones es el registro de memoria de un slot de proceso.
// Un slot libre tiene Tamanio 0 y Tabla nil.
type EspacioDirecciones struct {
	Tamanio int
	Tabla   *TablaPaginas
}

// MetricasProceso almacena estadísticas sobre el uso de memoria de un proceso
type MetricasProceso struct {
	AccesosTablasPaginas int
	FallosPagina         int
	LecturasMemoria      int
	EscriturasMemoria    int
}

// Kernel es el estado completo del simulador. Todos los métodos públicos
// se ejecutan bajo un único mutex.
type Kernel struct {
	mu sync.Mutex

	config Config
	log    *slog.Logger

	ejecutando       []bool
	espacios         []EspacioDirecciones
	memoriaPrincipal []byte
	marcosOcupados   []bool
	paginasAsignadas int

	metricasPorProceso map[int]*MetricasProceso
	prom               *metricasProm
}

// Estado resume la ocupación del kernel en un instante
type Estado struct {
	PaginasReservadas int   `json:"paginas_reservadas"`
	MarcosOcupados    int   `json:"marcos_ocupados"`
	MarcosLibres      int   `json:"marcos_libres"`
	ProcesosActivos   []int `json:"procesos_activos"`
}
