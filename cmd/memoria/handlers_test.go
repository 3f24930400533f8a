package main

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/sisoputnfrba/simulador-memoria/memoria"
	"github.com/sisoputnfrba/simulador-memoria/utils"
	"github.com/sisoputnfrba/simulador-memoria/volcados"
)

func TestMain(m *testing.M) {
	utils.InfoLog = slog.New(slog.NewTextHandler(io.Discard, nil))
	utils.ErrorLog = utils.InfoLog
	os.Exit(m.Run())
}

func nuevoServidorTest(t *testing.T) (*servidorMemoria, *utils.HTTPClient) {
	t.Helper()

	kernel, err := memoria.NuevoKernel(memoria.Config{
		PageSize: 32, MaxProcesses: 2, VirtualSpaceSize: 128, KernelSpaceSize: 256,
	}, nil, nil)
	if err != nil {
		t.Fatalf("kernel: %v", err)
	}
	almacen, err := volcados.Abrir(t.TempDir())
	if err != nil {
		t.Fatalf("volcados: %v", err)
	}
	t.Cleanup(func() { almacen.Cerrar() })

	srv := &servidorMemoria{
		kernel:   kernel,
		volcados: almacen,
		abortar:  func(causa any) { t.Errorf("unexpected abort: %v", causa) },
	}
	modulo := utils.NuevoModulo("Memoria", "")
	srv.registrarHandlers(modulo)

	httpSrv := httptest.NewServer(modulo.PrepararServidor("127.0.0.1", 0).Handler())
	t.Cleanup(httpSrv.Close)

	return srv, utils.NewHTTPClientURL(httpSrv.URL, "Test")
}

func TestCicloDeVidaPorHTTP(t *testing.T) {
	srv, cliente := nuevoServidorTest(t)

	resp, err := cliente.EnviarOperacion(utils.MensajeCrearEspacio, "CREAR", map[string]interface{}{"tamanio": 40})
	if err != nil {
		t.Fatalf("crear: %v", err)
	}
	pid := int(resp["pid"].(float64))

	_, err = cliente.EnviarOperacion(utils.MensajeEscribir, "ESCRIBIR", map[string]interface{}{
		"pid": pid, "direccion_logica": 30, "valor": "hola",
	})
	if err != nil {
		t.Fatalf("escribir: %v", err)
	}

	resp, err = cliente.EnviarOperacion(utils.MensajeLeer, "LEER", map[string]interface{}{
		"pid": pid, "direccion_logica": 30, "tamanio": 4,
	})
	if err != nil {
		t.Fatalf("leer: %v", err)
	}
	if resp["valor"] != "hola" {
		t.Fatalf("expected hola, got %v", resp["valor"])
	}

	resp, err = cliente.EnviarOperacion(utils.MensajeObtenerMarco, "MARCO", map[string]interface{}{"pid": pid, "pagina": 1})
	if err != nil || resp["presente"] != true || resp["marco"].(float64) != 1 {
		t.Fatalf("unexpected frame response %v (%v)", resp, err)
	}

	resp, err = cliente.EnviarOperacion(utils.MensajeMemoryDump, "DUMP", map[string]interface{}{"pid": pid})
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	v, err := srv.volcados.Obtener(resp["clave"].(string))
	if err != nil || string(v.Contenido[30:34]) != "hola" || len(v.Contenido) != 40 {
		t.Fatalf("unexpected dump %v (%v)", v, err)
	}

	if _, err := cliente.EnviarOperacion(utils.MensajeFinalizarEspacio, "FINALIZAR", map[string]interface{}{"pid": pid}); err != nil {
		t.Fatalf("finalizar: %v", err)
	}
	if estado := srv.kernel.Estado(); estado.PaginasReservadas != 0 || estado.MarcosOcupados != 0 {
		t.Fatalf("resources not reclaimed: %+v", estado)
	}

	// El dump final quedó archivado
	finales := 0
	srv.volcados.Listar(pid, func(volcados.Volcado) error { finales++; return nil })
	if finales != 2 {
		t.Fatalf("expected 2 dumps for pid %d, got %d", pid, finales)
	}
}

func TestErroresSeDevuelvenEnRespuesta(t *testing.T) {
	_, cliente := nuevoServidorTest(t)

	casos := []struct {
		nombre string
		tipo   int
		datos  map[string]interface{}
	}{
		{"excede espacio virtual", utils.MensajeCrearEspacio, map[string]interface{}{"tamanio": 1000}},
		{"sin tamanio", utils.MensajeCrearEspacio, map[string]interface{}{}},
		{"leer pid libre", utils.MensajeLeer, map[string]interface{}{"pid": 0, "direccion_logica": 0}},
		{"leer tamanio enorme", utils.MensajeLeer, map[string]interface{}{"pid": 0, "direccion_logica": 0, "tamanio": 1 << 62}},
		{"escribir sin valor", utils.MensajeEscribir, map[string]interface{}{"pid": 0, "direccion_logica": 0}},
		{"finalizar pid libre", utils.MensajeFinalizarEspacio, map[string]interface{}{"pid": 1}},
		{"dump pid libre", utils.MensajeMemoryDump, map[string]interface{}{"pid": 1}},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			if _, err := cliente.EnviarOperacion(c.tipo, c.nombre, c.datos); err == nil {
				t.Fatal("expected error response")
			}
		})
	}
}

func TestFueraDeRangoPorHTTP(t *testing.T) {
	srv, cliente := nuevoServidorTest(t)

	resp, _ := cliente.EnviarOperacion(utils.MensajeCrearEspacio, "CREAR", map[string]interface{}{"tamanio": 33})
	pid := int(resp["pid"].(float64))

	_, err := cliente.EnviarOperacion(utils.MensajeEscribir, "ESCRIBIR", map[string]interface{}{
		"pid": pid, "direccion_logica": 30, "valor": "demasiado largo",
	})
	if err == nil {
		t.Fatal("expected bounds error")
	}
	if estado := srv.kernel.Estado(); estado.MarcosOcupados != 0 {
		t.Fatalf("bounds failure faulted frames in: %+v", estado)
	}
}

func TestLeerTamanioEnormeSeRechazaAntesDeReservar(t *testing.T) {
	srv, cliente := nuevoServidorTest(t)

	resp, err := cliente.EnviarOperacion(utils.MensajeCrearEspacio, "CREAR", map[string]interface{}{"tamanio": 40})
	if err != nil {
		t.Fatalf("crear: %v", err)
	}
	pid := int(resp["pid"].(float64))

	for _, tamanio := range []int{1 << 62, 129} {
		_, err := cliente.EnviarOperacion(utils.MensajeLeer, "LEER", map[string]interface{}{
			"pid": pid, "direccion_logica": 0, "tamanio": tamanio,
		})
		if err == nil || !strings.Contains(err.Error(), memoria.ErrFueraDeRango.Error()) {
			t.Fatalf("tamanio %d: expected a bounds error reply, got %v", tamanio, err)
		}
	}

	// El servidor sigue atendiendo y el proceso no se tocó
	if _, err := cliente.EnviarOperacion(utils.MensajeLeer, "LEER", map[string]interface{}{
		"pid": pid, "direccion_logica": 0, "tamanio": 40,
	}); err != nil {
		t.Fatalf("leer: %v", err)
	}
	if estado := srv.kernel.Estado(); estado.PaginasReservadas != 2 || estado.MarcosOcupados != 2 {
		t.Fatalf("unexpected state %+v", estado)
	}
}

func TestAtender_AbortaAnteFallaFatal(t *testing.T) {
	var causa any
	srv := &servidorMemoria{abortar: func(c any) { causa = c }}

	handler := srv.atender(func(*utils.Mensaje) (interface{}, error) {
		panic(errors.AssertionFailedf("sin marcos"))
	})
	if _, err := handler(&utils.Mensaje{}); err == nil {
		t.Fatal("expected error after abort")
	}
	if !memoria.EsFallaFatal(causa) {
		t.Fatalf("abort not invoked with the fatal value: %v", causa)
	}
}

func TestAtender_RepropagaOtrosPanics(t *testing.T) {
	srv := &servidorMemoria{abortar: func(any) { t.Fatal("abort must not run") }}
	handler := srv.atender(func(*utils.Mensaje) (interface{}, error) {
		panic("otro")
	})

	defer func() {
		if r := recover(); r != "otro" {
			t.Fatalf("expected original panic, got %v", r)
		}
	}()
	handler(&utils.Mensaje{})
}
