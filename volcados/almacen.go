// Package volcados archiva los memory dumps de los procesos en un pebble local.
package volcados

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// Volcado es un memory dump archivado
type Volcado struct {
	Clave     string
	PID       int
	Creado    time.Time
	Contenido []byte
}

// Almacen guarda los volcados con clave "volcado/<pid>/<seq>"
type Almacen struct {
	db  *pebble.DB
	seq atomic.Uint64
}

func Abrir(dir string) (*Almacen, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "abriendo almacén de volcados en %s", dir)
	}
	a := &Almacen{db: db}

	// La secuencia continúa desde la última clave guardada
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("volcado/"),
		UpperBound: []byte("volcado/~"),
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	var ultima uint64
	for iter.First(); iter.Valid(); iter.Next() {
		_, seq, err := parsearClave(iter.Key())
		if err == nil && seq > ultima {
			ultima = seq
		}
	}
	a.seq.Store(ultima)
	if err := iter.Close(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Almacen) Cerrar() error {
	return a.db.Close()
}

// Guardar archiva el contenido y devuelve la clave asignada
func (a *Almacen) Guardar(pid int, creado time.Time, contenido []byte) (string, error) {
	clave := claveDe(pid, a.seq.Add(1))
	if err := a.db.Set(clave, codificar(creado, contenido), pebble.Sync); err != nil {
		return "", errors.Wrapf(err, "guardando volcado del proceso %d", pid)
	}
	return string(clave), nil
}

// Obtener devuelve el volcado con la clave dada
func (a *Almacen) Obtener(clave string) (Volcado, error) {
	val, closer, err := a.db.Get([]byte(clave))
	if err != nil {
		return Volcado{}, errors.Wrapf(err, "volcado %s", clave)
	}
	defer closer.Close()

	pid, _, err := parsearClave([]byte(clave))
	if err != nil {
		return Volcado{}, err
	}
	creado, contenido, err := decodificar(val)
	if err != nil {
		return Volcado{}, err
	}
	return Volcado{Clave: clave, PID: pid, Creado: creado, Contenido: contenido}, nil
}

// Listar recorre los volcados de un proceso en orden de creación
func (a *Almacen) Listar(pid int, fn func(Volcado) error) error {
	prefijo := []byte(fmt.Sprintf("volcado/%010d/", pid))
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: prefijo,
		UpperBound: append(bytes.Clone(prefijo[:len(prefijo)-1]), '0'),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		creado, contenido, err := decodificar(iter.Value())
		if err != nil {
			return err
		}
		v := Volcado{
			Clave:     string(iter.Key()),
			PID:       pid,
			Creado:    creado,
			Contenido: bytes.Clone(contenido),
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return iter.Error()
}

// -------------------- Helpers --------------------

func claveDe(pid int, seq uint64) []byte {
	return []byte(fmt.Sprintf("volcado/%010d/%020d", pid, seq))
}

func parsearClave(b []byte) (int, uint64, error) {
	var pid int
	var seq uint64
	if _, err := fmt.Sscanf(string(b), "volcado/%d/%d", &pid, &seq); err != nil {
		return 0, 0, errors.Wrapf(err, "clave de volcado inválida %q", b)
	}
	return pid, seq, nil
}

// [creado:8][contenido...]
func codificar(creado time.Time, contenido []byte) []byte {
	buf := make([]byte, 8+len(contenido))
	binary.BigEndian.PutUint64(buf[:8], uint64(creado.UnixNano()))
	copy(buf[8:], contenido)
	return buf
}

func decodificar(b []byte) (time.Time, []byte, error) {
	if len(b) < 8 {
		return time.Time{}, nil, errors.New("registro de volcado demasiado corto")
	}
	creado := time.Unix(0, int64(binary.BigEndian.Uint64(b[:8])))
	return creado, bytes.Clone(b[8:]), nil
}
