package main

import "github.com/sisoputnfrba/simulador-memoria/memoria"

// MemoryConfig representa la configuración específica del módulo Memoria
type MemoryConfig struct {
	IPMemory         string `json:"IP_MEMORIA"`
	PortMemory       int    `json:"PUERTO_MEMORIA"`
	LogLevel         string `json:"LOG_LEVEL"`
	MemorySize       int    `json:"TAM_MEMORIA"`         // Tamaño de la memoria física en bytes
	PageSize         int    `json:"TAM_PAGINA"`          // Tamaño de página en bytes
	MaxProcesses     int    `json:"MAX_PROCESOS"`        // Slots de proceso
	VirtualSpaceSize int    `json:"TAM_MEMORIA_VIRTUAL"` // Máximo espacio virtual por proceso
	MemoryDelay      int    `json:"RETARDO_MEMORIA"`     // Retardo de acceso a memoria
	DumpPath         string `json:"DUMP_PATH"`           // Directorio del almacén de volcados
}

func (c *MemoryConfig) kernel() memoria.Config {
	return memoria.Config{
		PageSize:         c.PageSize,
		MaxProcesses:     c.MaxProcesses,
		VirtualSpaceSize: c.VirtualSpaceSize,
		KernelSpaceSize:  c.MemorySize,
	}
}

var config *MemoryConfig
