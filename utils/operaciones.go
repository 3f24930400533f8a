package utils

import (
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
)

// AplicarRetardo aplica un retardo simulado y lo registra
func AplicarRetardo(operacion string, duracionMs int) {
	if duracionMs <= 0 {
		return
	}
	slog.Debug("Aplicando retardo", "operación", operacion, "duración_ms", duracionMs)
	time.Sleep(time.Duration(duracionMs) * time.Millisecond)
}

// DatosDe devuelve el mapa de datos del mensaje
func DatosDe(msg *Mensaje) (map[string]interface{}, error) {
	datos, ok := msg.Datos.(map[string]interface{})
	if !ok {
		return nil, errors.Newf("formato de datos incorrecto: %v", msg.Datos)
	}
	return datos, nil
}

// ObtenerEntero extrae un entero de los datos. JSON decodifica los números como float64.
func ObtenerEntero(datos map[string]interface{}, clave string) (int, error) {
	switch v := datos[clave].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, errors.Newf("%s no es entero: %v", clave, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case nil:
		return 0, errors.Newf("%s no proporcionado", clave)
	default:
		return 0, errors.Newf("%s con formato incorrecto: %v", clave, v)
	}
}

// ObtenerTexto extrae un string de los datos
func ObtenerTexto(datos map[string]interface{}, clave string) (string, error) {
	v, ok := datos[clave].(string)
	if !ok {
		return "", errors.Newf("%s no proporcionado o formato incorrecto", clave)
	}
	return v, nil
}

// RespuestaError arma la respuesta estándar de error de los handlers
func RespuestaError(err error) map[string]interface{} {
	return map[string]interface{}{"error": err.Error()}
}
