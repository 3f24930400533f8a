package volcados

import (
	"bytes"
	"testing"
	"time"
)

func TestAlmacen_GuardarYObtener(t *testing.T) {
	a, err := Abrir(t.TempDir())
	if err != nil {
		t.Fatalf("abrir: %v", err)
	}
	defer a.Cerrar()

	creado := time.Unix(1700000000, 42)
	clave, err := a.Guardar(3, creado, []byte("contenido"))
	if err != nil {
		t.Fatalf("guardar: %v", err)
	}

	v, err := a.Obtener(clave)
	if err != nil {
		t.Fatalf("obtener: %v", err)
	}
	if v.PID != 3 || !v.Creado.Equal(creado) || string(v.Contenido) != "contenido" {
		t.Fatalf("unexpected volcado %+v", v)
	}
}

func TestAlmacen_ObtenerInexistente(t *testing.T) {
	a, err := Abrir(t.TempDir())
	if err != nil {
		t.Fatalf("abrir: %v", err)
	}
	defer a.Cerrar()

	if _, err := a.Obtener("volcado/0000000001/00000000000000000001"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestAlmacen_ListarPorProceso(t *testing.T) {
	a, err := Abrir(t.TempDir())
	if err != nil {
		t.Fatalf("abrir: %v", err)
	}
	defer a.Cerrar()

	ahora := time.Now()
	a.Guardar(1, ahora, []byte{1})
	a.Guardar(2, ahora, []byte{2})
	a.Guardar(1, ahora, []byte{1, 1})
	a.Guardar(10, ahora, []byte{10})

	var contenidos [][]byte
	err = a.Listar(1, func(v Volcado) error {
		if v.PID != 1 {
			t.Errorf("unexpected pid %d", v.PID)
		}
		contenidos = append(contenidos, v.Contenido)
		return nil
	})
	if err != nil {
		t.Fatalf("listar: %v", err)
	}
	if len(contenidos) != 2 || !bytes.Equal(contenidos[0], []byte{1}) || !bytes.Equal(contenidos[1], []byte{1, 1}) {
		t.Fatalf("unexpected dumps for pid 1: %v", contenidos)
	}
}

func TestAlmacen_SecuenciaSobreviveReapertura(t *testing.T) {
	dir := t.TempDir()

	a, err := Abrir(dir)
	if err != nil {
		t.Fatalf("abrir: %v", err)
	}
	primera, _ := a.Guardar(0, time.Now(), []byte("a"))
	if err := a.Cerrar(); err != nil {
		t.Fatalf("cerrar: %v", err)
	}

	b, err := Abrir(dir)
	if err != nil {
		t.Fatalf("reabrir: %v", err)
	}
	defer b.Cerrar()

	segunda, _ := b.Guardar(0, time.Now(), []byte("b"))
	if segunda <= primera {
		t.Fatalf("expected increasing keys, got %s then %s", primera, segunda)
	}
	if v, err := b.Obtener(primera); err != nil || string(v.Contenido) != "a" {
		t.Fatalf("first dump lost after reopen: %v", err)
	}
}
