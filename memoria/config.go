package memoria

import "github.com/cockroachdb/errors"

// Config fija las constantes del simulador. No cambia una vez creado el Kernel.
type Config struct {
	PageSize         int `json:"TAM_PAGINA"`          // Tamaño de página en bytes
	MaxProcesses     int `json:"MAX_PROCESOS"`        // Cantidad de slots de proceso
	VirtualSpaceSize int `json:"TAM_MEMORIA_VIRTUAL"` // Máximo espacio virtual por proceso
	KernelSpaceSize  int `json:"TAM_MEMORIA"`         // Memoria física total simulada
}

func ConfigPorDefecto() Config {
	return Config{
		PageSize:         32,
		MaxProcesses:     16,
		VirtualSpaceSize: 512,
		KernelSpaceSize:  4096,
	}
}

// Validar rechaza configuraciones con las que el kernel no puede operar
func (c Config) Validar() error {
	switch {
	case c.PageSize <= 0:
		return errors.Newf("TAM_PAGINA debe ser positivo: %d", c.PageSize)
	case c.MaxProcesses <= 0:
		return errors.Newf("MAX_PROCESOS debe ser positivo: %d", c.MaxProcesses)
	case c.VirtualSpaceSize < 0:
		return errors.Newf("TAM_MEMORIA_VIRTUAL no puede ser negativo: %d", c.VirtualSpaceSize)
	case c.KernelSpaceSize < c.PageSize:
		return errors.Newf("TAM_MEMORIA (%d) debe alcanzar al menos una página de %d bytes",
			c.KernelSpaceSize, c.PageSize)
	}
	return nil
}

// TotalMarcos es la cantidad de marcos que entran en la memoria principal
func (c Config) TotalMarcos() int {
	return c.KernelSpaceSize / c.PageSize
}

// paginasNecesarias calcula ceil(tamanio / TAM_PAGINA) sin desbordar cerca de math.MaxInt
func (c Config) paginasNecesarias(tamanio int) int {
	paginas := tamanio / c.PageSize
	if tamanio%c.PageSize != 0 {
		paginas++
	}
	return paginas
}
