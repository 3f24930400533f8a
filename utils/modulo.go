package utils

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// Modulo representa un módulo genérico del sistema
type Modulo struct {
	Nombre      string
	Server      *HTTPServer
	ConfigPath  string
	HandlerFunc map[int]map[string]HTTPHandlerFunc
}

// NuevoModulo crea una nueva instancia de un módulo
func NuevoModulo(nombre string, configPath string) *Modulo {
	return &Modulo{
		Nombre:      nombre,
		ConfigPath:  configPath,
		HandlerFunc: make(map[int]map[string]HTTPHandlerFunc),
	}
}

// RegistrarHandler registra un handler para un tipo de mensaje y operación específicos
func (m *Modulo) RegistrarHandler(tipo int, operacion string, handler HTTPHandlerFunc) {
	if _, existe := m.HandlerFunc[tipo]; !existe {
		m.HandlerFunc[tipo] = make(map[string]HTTPHandlerFunc)
	}
	m.HandlerFunc[tipo][operacion] = handler
}

// PrepararServidor crea el servidor HTTP del módulo con los handlers registrados.
// El llamador decide cuándo arrancarlo con Start.
func (m *Modulo) PrepararServidor(ip string, puerto int) *HTTPServer {
	m.Server = NewHTTPServer(ip, puerto, m.Nombre)

	for tipo, handlersPorOperacion := range m.HandlerFunc {
		m.Server.RegisterHTTPHandler(tipo, func(msg *Mensaje) (interface{}, error) {
			operacion := msg.Operacion
			if operacion == "" {
				operacion = "default"
			}

			handler, existe := handlersPorOperacion[operacion]
			if !existe {
				handler, existe = handlersPorOperacion["default"]
				if !existe {
					slog.Error("No hay handler para operación", "tipo", tipo, "operacion", operacion)
					return nil, errors.Newf("no hay handler para operación %s", operacion)
				}
			}

			return handler(msg)
		})
	}

	return m.Server
}

// LeerConfiguracion decodifica el archivo JSON en T
func LeerConfiguracion[T any](ruta string) (*T, error) {
	absPath, err := filepath.Abs(ruta)
	if err != nil {
		return nil, errors.Wrapf(err, "obteniendo ruta absoluta de %s", ruta)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "abriendo archivo de configuración %s", absPath)
	}
	defer file.Close()

	var config T
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return nil, errors.Wrapf(err, "decodificando configuración %s", absPath)
	}
	return &config, nil
}

// CargarConfiguracion es LeerConfiguracion para el arranque: ante un error
// lo registra y termina el proceso.
func CargarConfiguracion[T any](ruta string) *T {
	slog.Info("Cargando configuración", "ruta", ruta)

	config, err := LeerConfiguracion[T](ruta)
	if err != nil {
		slog.Error("Error cargando configuración", "error", err)
		os.Exit(1)
	}

	slog.Info("Configuración cargada correctamente")
	return config
}

// ============================================================================
// Constantes para tipos de mensajes entre módulos
// ============================================================================
const (
	// === COMUNICACIÓN BÁSICA (1-9) ===
	MensajeHandshake = 1 // Conexión inicial

	// === ACCESOS A MEMORIA (10-19) ===
	MensajeLeer         = 10 // Leer un rango virtual
	MensajeEscribir     = 11 // Escribir un rango virtual
	MensajeObtenerMarco = 12 // Consultar el marco de una página
	MensajeEstado       = 14 // Reservas, marcos y procesos activos
	MensajeMemoryDump   = 15 // Volcado de un proceso

	// === ESPACIOS DE DIRECCIONES (20-29) ===
	MensajeCrearEspacio     = 20 // Crear proceso
	MensajeFinalizarEspacio = 21 // Terminar proceso
)
