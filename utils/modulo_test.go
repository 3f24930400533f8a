package utils

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

type configPrueba struct {
	IP     string `json:"IP_MEMORIA"`
	Puerto int    `json:"PUERTO_MEMORIA"`
}

func TestLeerConfiguracion(t *testing.T) {
	dir := t.TempDir()
	ruta := filepath.Join(dir, "memoria.json")
	if err := os.WriteFile(ruta, []byte(`{"IP_MEMORIA":"127.0.0.1","PUERTO_MEMORIA":8002}`), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LeerConfiguracion[configPrueba](ruta)
	if err != nil {
		t.Fatalf("leer: %v", err)
	}
	if config.IP != "127.0.0.1" || config.Puerto != 8002 {
		t.Fatalf("unexpected config %+v", config)
	}
}

func TestLeerConfiguracion_Errores(t *testing.T) {
	dir := t.TempDir()

	if _, err := LeerConfiguracion[configPrueba](filepath.Join(dir, "no-existe.json")); err == nil {
		t.Error("expected error for missing file")
	}

	desconocida := filepath.Join(dir, "extra.json")
	os.WriteFile(desconocida, []byte(`{"IP_MEMORIA":"x","OTRA":1}`), 0644)
	if _, err := LeerConfiguracion[configPrueba](desconocida); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestModulo_RuteoPorOperacion(t *testing.T) {
	m := NuevoModulo("Prueba", "")
	m.RegistrarHandler(MensajeLeer, "default", func(msg *Mensaje) (interface{}, error) {
		return map[string]interface{}{"status": "OK", "via": "default"}, nil
	})
	m.RegistrarHandler(MensajeLeer, "ESPECIAL", func(msg *Mensaje) (interface{}, error) {
		return map[string]interface{}{"status": "OK", "via": "especial"}, nil
	})

	srv := httptest.NewServer(m.PrepararServidor("127.0.0.1", 0).Handler())
	defer srv.Close()
	cliente := NewHTTPClientURL(srv.URL, "Test")

	resp, err := cliente.EnviarOperacion(MensajeLeer, "ESPECIAL", nil)
	if err != nil || resp["via"] != "especial" {
		t.Fatalf("expected especial handler, got %v (%v)", resp, err)
	}
	resp, err = cliente.EnviarOperacion(MensajeLeer, "OTRA", nil)
	if err != nil || resp["via"] != "default" {
		t.Fatalf("expected default handler, got %v (%v)", resp, err)
	}
	if _, err := cliente.EnviarOperacion(MensajeEscribir, "", nil); err == nil {
		t.Fatal("expected error for unregistered message type")
	}
	if err := cliente.VerificarConexion(); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestEnviarOperacion_PropagaError(t *testing.T) {
	m := NuevoModulo("Prueba", "")
	m.RegistrarHandler(MensajeCrearEspacio, "default", func(msg *Mensaje) (interface{}, error) {
		return map[string]interface{}{"error": "admisión rechazada"}, nil
	})
	srv := httptest.NewServer(m.PrepararServidor("127.0.0.1", 0).Handler())
	defer srv.Close()

	_, err := NewHTTPClientURL(srv.URL, "Test").EnviarOperacion(MensajeCrearEspacio, "CREAR", nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestObtenerEntero(t *testing.T) {
	datos := map[string]interface{}{"pid": float64(3), "mitad": 1.5, "texto": "x"}

	if v, err := ObtenerEntero(datos, "pid"); err != nil || v != 3 {
		t.Fatalf("expected 3, got %d (%v)", v, err)
	}
	for _, clave := range []string{"mitad", "texto", "falta"} {
		if _, err := ObtenerEntero(datos, clave); err == nil {
			t.Errorf("%s: expected error", clave)
		}
	}
}
