package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/sisoputnfrba/simulador-memoria/utils"
)

// proceso es el estado de ejecución de un script
type proceso struct {
	script string
	pid    int // -1 hasta CREAR
	pc     int
}

// cargarScript lee las instrucciones no vacías del archivo
func cargarScript(ruta string) ([]string, error) {
	file, err := os.Open(ruta)
	if err != nil {
		return nil, errors.Wrapf(err, "abriendo script %s", ruta)
	}
	defer file.Close()

	var instrucciones []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if linea := strings.TrimSpace(scanner.Text()); linea != "" {
			instrucciones = append(instrucciones, linea)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "leyendo script %s", ruta)
	}
	return instrucciones, nil
}

// ejecutarScript corre el script completo. Si falla una instrucción después
// de CREAR, el espacio del proceso se finaliza antes de devolver el error.
func ejecutarScript(ctx context.Context, mem memoriaRemota, ruta string) (err error) {
	instrucciones, err := cargarScript(ruta)
	if err != nil {
		return err
	}

	p := &proceso{script: ruta, pid: -1}
	defer func() {
		if err != nil && p.pid != -1 {
			if errFin := mem.finalizar(p.pid); errFin != nil {
				utils.ErrorLog.Error("No se pudo finalizar el proceso tras el error", "pid", p.pid, "error", errFin)
			}
		}
	}()

	for p.pc = 0; p.pc < len(instrucciones); p.pc++ {
		if ctx.Err() != nil {
			return errors.Wrapf(ctx.Err(), "script %s interrumpido en PC %d", ruta, p.pc)
		}

		fin, err := decodeAndExecute(mem, p, instrucciones[p.pc])
		if err != nil {
			return errors.Wrapf(err, "%s:%d", ruta, p.pc+1)
		}
		if fin {
			return nil
		}
	}

	if p.pid != -1 {
		return errors.Newf("%s terminó sin EXIT con el proceso %d activo", ruta, p.pid)
	}
	return nil
}

// Decode y Execute: interpretar y ejecutar una instrucción.
// Devuelve true cuando el proceso terminó.
func decodeAndExecute(mem memoriaRemota, p *proceso, instruccion string) (bool, error) {
	partes := strings.Fields(instruccion)
	operacion := partes[0]
	parametros := partes[1:]

	utils.InfoLog.Info(fmt.Sprintf("PID: %d - Ejecutando: %s %s", p.pid, operacion, strings.Join(parametros, " ")))

	if operacion != "CREAR" && operacion != "NOOP" && p.pid == -1 {
		return false, errors.Newf("%s antes de CREAR", operacion)
	}

	switch operacion {
	case "NOOP":
		// No hacer nada

	case "CREAR":
		if p.pid != -1 {
			return false, errors.Newf("CREAR repetido, el proceso %d ya existe", p.pid)
		}
		if len(parametros) < 1 {
			return false, errors.New("CREAR: parámetros insuficientes")
		}
		tamanio, err := strconv.Atoi(parametros[0])
		if err != nil {
			return false, errors.Wrap(err, "tamaño de CREAR")
		}
		pid, err := mem.crearEspacio(tamanio)
		if err != nil {
			return false, err
		}
		p.pid = pid
		utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Creado desde %s - Tamaño: %d", pid, p.script, tamanio))

	case "ESCRIBIR":
		if len(parametros) < 2 {
			return false, errors.New("ESCRIBIR: parámetros insuficientes")
		}
		direccion, err := strconv.Atoi(parametros[0])
		if err != nil {
			return false, errors.Wrap(err, "dirección de ESCRIBIR")
		}
		// El valor puede contener espacios
		valor := strings.Join(parametros[1:], " ")
		if err := mem.escribir(p.pid, direccion, valor); err != nil {
			return false, err
		}
		utils.InfoLog.Info(fmt.Sprintf("PID: %d - Acción: ESCRIBIR - Dirección Lógica: %d - Valor: %s", p.pid, direccion, valor))

	case "LEER":
		if len(parametros) < 2 {
			return false, errors.New("LEER: parámetros insuficientes")
		}
		direccion, err1 := strconv.Atoi(parametros[0])
		tamanio, err2 := strconv.Atoi(parametros[1])
		if err := errors.CombineErrors(err1, err2); err != nil {
			return false, errors.Wrap(err, "parámetros de LEER")
		}
		valor, err := mem.leer(p.pid, direccion, tamanio)
		if err != nil {
			return false, err
		}
		utils.InfoLog.Info(fmt.Sprintf("PID: %d - Acción: LEER - Dirección Lógica: %d - Valor: %q", p.pid, direccion, valor))

	case "DUMP_MEMORY":
		clave, err := mem.volcar(p.pid)
		if err != nil {
			return false, err
		}
		utils.InfoLog.Info("DUMP_MEMORY completado", "pid", p.pid, "clave", clave)

	case "EXIT":
		if err := mem.finalizar(p.pid); err != nil {
			return false, err
		}
		utils.InfoLog.Info("EXIT ejecutado", "pid", p.pid)
		p.pid = -1
		return true, nil

	default:
		return false, errors.Newf("instrucción desconocida %q", operacion)
	}

	return false, nil
}
