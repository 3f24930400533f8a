package main

import (
	"github.com/cockroachdb/errors"

	"github.com/sisoputnfrba/simulador-memoria/utils"
)

// memoriaRemota es lo que la CPU necesita del módulo Memoria
type memoriaRemota interface {
	crearEspacio(tamanio int) (int, error)
	escribir(pid, direccionLogica int, valor string) error
	leer(pid, direccionLogica, tamanio int) (string, error)
	volcar(pid int) (string, error)
	finalizar(pid int) error
}

// clienteMemoria implementa memoriaRemota sobre el bus HTTP
type clienteMemoria struct {
	http *utils.HTTPClient
}

func (c *clienteMemoria) crearEspacio(tamanio int) (int, error) {
	resp, err := c.http.EnviarOperacion(utils.MensajeCrearEspacio, "CREAR", map[string]interface{}{
		"tamanio": tamanio,
	})
	if err != nil {
		return -1, err
	}
	pid, err := utils.ObtenerEntero(resp, "pid")
	if err != nil {
		return -1, errors.Wrap(err, "respuesta de creación sin pid")
	}
	return pid, nil
}

func (c *clienteMemoria) escribir(pid, direccionLogica int, valor string) error {
	_, err := c.http.EnviarOperacion(utils.MensajeEscribir, "ESCRIBIR", map[string]interface{}{
		"pid":              pid,
		"direccion_logica": direccionLogica,
		"valor":            valor,
	})
	return err
}

func (c *clienteMemoria) leer(pid, direccionLogica, tamanio int) (string, error) {
	resp, err := c.http.EnviarOperacion(utils.MensajeLeer, "LEER", map[string]interface{}{
		"pid":              pid,
		"direccion_logica": direccionLogica,
		"tamanio":          tamanio,
	})
	if err != nil {
		return "", err
	}
	return utils.ObtenerTexto(resp, "valor")
}

func (c *clienteMemoria) volcar(pid int) (string, error) {
	resp, err := c.http.EnviarOperacion(utils.MensajeMemoryDump, "DUMP", map[string]interface{}{
		"pid": pid,
	})
	if err != nil {
		return "", err
	}
	return utils.ObtenerTexto(resp, "clave")
}

func (c *clienteMemoria) finalizar(pid int) error {
	_, err := c.http.EnviarOperacion(utils.MensajeFinalizarEspacio, "FINALIZAR", map[string]interface{}{
		"pid": pid,
	})
	return err
}
