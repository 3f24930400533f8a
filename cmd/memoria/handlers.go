package main

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/sisoputnfrba/simulador-memoria/memoria"
	"github.com/sisoputnfrba/simulador-memoria/utils"
	"github.com/sisoputnfrba/simulador-memoria/volcados"
)

type servidorMemoria struct {
	kernel   *memoria.Kernel
	volcados *volcados.Almacen
	retardo  int
	// abortar se invoca con el valor del panic cuando el kernel viola un invariante
	abortar func(causa any)
}

func (s *servidorMemoria) registrarHandlers(modulo *utils.Modulo) {
	modulo.RegistrarHandler(utils.MensajeHandshake, "default", s.atender(s.handlerHandshake))
	modulo.RegistrarHandler(utils.MensajeCrearEspacio, "default", s.atender(s.handlerCrearEspacio))
	modulo.RegistrarHandler(utils.MensajeFinalizarEspacio, "default", s.atender(s.handlerFinalizarEspacio))
	modulo.RegistrarHandler(utils.MensajeLeer, "default", s.atender(s.handlerLeerMemoria))
	modulo.RegistrarHandler(utils.MensajeEscribir, "default", s.atender(s.handlerEscribirMemoria))
	modulo.RegistrarHandler(utils.MensajeObtenerMarco, "default", s.atender(s.handlerObtenerMarco))
	modulo.RegistrarHandler(utils.MensajeEstado, "default", s.atender(s.handlerEstado))
	modulo.RegistrarHandler(utils.MensajeMemoryDump, "default", s.atender(s.handlerMemoryDump))

	utils.InfoLog.Info("Handlers registrados correctamente")
}

// atender aplica el retardo de memoria y convierte una falla fatal del kernel
// en un aborto del simulador. net/http recupera los panics de cada solicitud,
// así que sin esto el servidor seguiría atendiendo con un estado inválido.
func (s *servidorMemoria) atender(handler utils.HTTPHandlerFunc) utils.HTTPHandlerFunc {
	return func(msg *utils.Mensaje) (respuesta interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				if !memoria.EsFallaFatal(r) {
					panic(r)
				}
				s.abortar(r)
				respuesta, err = nil, errors.Newf("simulador abortado: %v", r)
			}
		}()

		utils.AplicarRetardo("memoria", s.retardo)
		return handler(msg)
	}
}

func (s *servidorMemoria) handlerHandshake(msg *utils.Mensaje) (interface{}, error) {
	utils.InfoLog.Info("Handshake recibido", "origen", msg.Origen)

	config := s.kernel.Config()
	return map[string]interface{}{
		"status":              "OK",
		"tam_pagina":          config.PageSize,
		"max_procesos":        config.MaxProcesses,
		"tam_memoria_virtual": config.VirtualSpaceSize,
		"tam_memoria":         config.KernelSpaceSize,
	}, nil
}

func (s *servidorMemoria) handlerCrearEspacio(msg *utils.Mensaje) (interface{}, error) {
	datos, err := utils.DatosDe(msg)
	if err != nil {
		utils.ErrorLog.Error("Formato de datos incorrecto", "datos", msg.Datos)
		return utils.RespuestaError(err), nil
	}
	tamanio, err := utils.ObtenerEntero(datos, "tamanio")
	if err != nil {
		utils.ErrorLog.Error("Tamaño no proporcionado", "datos", datos)
		return utils.RespuestaError(err), nil
	}

	utils.InfoLog.Info("Solicitud de creación de proceso", "tamanio", tamanio, "origen", msg.Origen)

	pid, err := s.kernel.CrearEspacio(tamanio)
	if err != nil {
		utils.ErrorLog.Error("Creación de proceso rechazada", "tamanio", tamanio, "error", err)
		return utils.RespuestaError(err), nil
	}

	return map[string]interface{}{
		"status": "OK",
		"pid":    pid,
	}, nil
}

func (s *servidorMemoria) handlerFinalizarEspacio(msg *utils.Mensaje) (interface{}, error) {
	datos, err := utils.DatosDe(msg)
	if err != nil {
		return utils.RespuestaError(err), nil
	}
	pid, err := utils.ObtenerEntero(datos, "pid")
	if err != nil {
		utils.ErrorLog.Error("PID no proporcionado", "datos", datos)
		return utils.RespuestaError(err), nil
	}

	utils.InfoLog.Info("Solicitud de finalización de proceso", "pid", pid)

	// Crear dump final
	if _, err := s.volcar(pid); err != nil {
		utils.ErrorLog.Error("Error creando dump final", "pid", pid, "error", err)
	}

	if err := s.kernel.FinalizarEspacio(pid); err != nil {
		utils.ErrorLog.Error("Error liberando memoria", "pid", pid, "error", err)
		return utils.RespuestaError(err), nil
	}

	utils.InfoLog.Info("Proceso finalizado correctamente", "pid", pid)
	return map[string]interface{}{"status": "OK"}, nil
}

func (s *servidorMemoria) handlerLeerMemoria(msg *utils.Mensaje) (interface{}, error) {
	datos, err := utils.DatosDe(msg)
	if err != nil {
		return utils.RespuestaError(err), nil
	}
	pid, err := utils.ObtenerEntero(datos, "pid")
	if err != nil {
		return utils.RespuestaError(err), nil
	}
	dir, err := utils.ObtenerEntero(datos, "direccion_logica")
	if err != nil {
		return utils.RespuestaError(err), nil
	}
	tamanio, err := utils.ObtenerEntero(datos, "tamanio")
	if err != nil {
		tamanio = 1
	}
	// Ningún proceso puede comprometer más que el espacio virtual
	if maximo := s.kernel.Config().VirtualSpaceSize; tamanio < 0 || tamanio > maximo {
		utils.ErrorLog.Error("Tamaño de lectura inválido", "pid", pid, "tamanio", tamanio, "maximo", maximo)
		return utils.RespuestaError(errors.Wrapf(memoria.ErrFueraDeRango, "tamaño %d fuera de [0, %d]", tamanio, maximo)), nil
	}

	buf := make([]byte, tamanio)
	if err := s.kernel.Leer(pid, memoria.DirVirtual(dir), tamanio, buf); err != nil {
		utils.ErrorLog.Error("Error leyendo memoria", "pid", pid, "dir_logica", dir, "tamanio", tamanio, "error", err)
		return utils.RespuestaError(err), nil
	}

	return map[string]interface{}{
		"status": "OK",
		"valor":  string(buf),
	}, nil
}

func (s *servidorMemoria) handlerEscribirMemoria(msg *utils.Mensaje) (interface{}, error) {
	datos, err := utils.DatosDe(msg)
	if err != nil {
		return utils.RespuestaError(err), nil
	}
	pid, err := utils.ObtenerEntero(datos, "pid")
	if err != nil {
		return utils.RespuestaError(err), nil
	}
	dir, err := utils.ObtenerEntero(datos, "direccion_logica")
	if err != nil {
		return utils.RespuestaError(err), nil
	}
	valor, err := utils.ObtenerTexto(datos, "valor")
	if err != nil {
		utils.ErrorLog.Error("Valor no proporcionado", "datos", datos)
		return utils.RespuestaError(err), nil
	}

	buf := []byte(valor)
	if err := s.kernel.Escribir(pid, memoria.DirVirtual(dir), len(buf), buf); err != nil {
		utils.ErrorLog.Error("Error escribiendo memoria", "pid", pid, "dir_logica", dir, "tamanio", len(buf), "error", err)
		return utils.RespuestaError(err), nil
	}

	return map[string]interface{}{"status": "OK"}, nil
}

func (s *servidorMemoria) handlerObtenerMarco(msg *utils.Mensaje) (interface{}, error) {
	datos, err := utils.DatosDe(msg)
	if err != nil {
		return utils.RespuestaError(err), nil
	}
	pid, err := utils.ObtenerEntero(datos, "pid")
	if err != nil {
		return utils.RespuestaError(err), nil
	}
	pagina, err := utils.ObtenerEntero(datos, "pagina")
	if err != nil {
		return utils.RespuestaError(err), nil
	}

	marco, err := s.kernel.Marco(pid, memoria.Pagina(pagina))
	if err != nil {
		utils.ErrorLog.Error("Error obteniendo marco", "pid", pid, "pagina", pagina, "error", err)
		return utils.RespuestaError(err), nil
	}

	utils.InfoLog.Info(fmt.Sprintf("PID: %d OBTENER MARCO Página: %d Marco: %d", pid, pagina, marco))
	return map[string]interface{}{
		"status":   "OK",
		"marco":    int(marco),
		"presente": marco.Valido(),
	}, nil
}

func (s *servidorMemoria) handlerEstado(msg *utils.Mensaje) (interface{}, error) {
	return map[string]interface{}{
		"status": "OK",
		"estado": s.kernel.Estado(),
	}, nil
}

func (s *servidorMemoria) handlerMemoryDump(msg *utils.Mensaje) (interface{}, error) {
	datos, err := utils.DatosDe(msg)
	if err != nil {
		return utils.RespuestaError(err), nil
	}
	pid, err := utils.ObtenerEntero(datos, "pid")
	if err != nil {
		utils.ErrorLog.Error("PID no proporcionado o formato incorrecto", "datos", datos)
		return utils.RespuestaError(err), nil
	}

	clave, err := s.volcar(pid)
	if err != nil {
		utils.ErrorLog.Error("Error al crear memory dump", "pid", pid, "error", err)
		return utils.RespuestaError(err), nil
	}

	utils.InfoLog.Info("Memory dump completado", "pid", pid, "clave", clave)
	return map[string]interface{}{
		"status": "OK",
		"clave":  clave,
	}, nil
}

// volcar toma el contenido del proceso y lo archiva
func (s *servidorMemoria) volcar(pid int) (string, error) {
	contenido, err := s.kernel.Volcar(pid)
	if err != nil {
		return "", err
	}
	return s.volcados.Guardar(pid, time.Now(), contenido)
}
