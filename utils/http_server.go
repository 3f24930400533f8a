package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// HTTPHandlerFunc es el tipo para los manejadores de mensajes HTTP
type HTTPHandlerFunc func(*Mensaje) (interface{}, error)

// HTTPServer representa un servidor HTTP para cualquier módulo
type HTTPServer struct {
	IP       string
	Puerto   int
	Nombre   string
	server   *http.Server
	once     sync.Once
	handlers map[int]HTTPHandlerFunc
	rutas    map[string]http.Handler
}

// NewHTTPServer crea un nuevo servidor HTTP
func NewHTTPServer(ip string, puerto int, nombre string) *HTTPServer {
	return &HTTPServer{
		IP:       ip,
		Puerto:   puerto,
		Nombre:   nombre,
		handlers: make(map[int]HTTPHandlerFunc),
		rutas:    make(map[string]http.Handler),
	}
}

// RegisterHTTPHandler registra un manejador para un tipo específico de mensaje
func (s *HTTPServer) RegisterHTTPHandler(tipoMensaje int, handler HTTPHandlerFunc) {
	s.handlers[tipoMensaje] = handler
}

// RegistrarRuta expone un http.Handler adicional, por ejemplo /metrics
func (s *HTTPServer) RegistrarRuta(ruta string, handler http.Handler) {
	s.rutas[ruta] = handler
}

// Handler arma el mux con /mensaje, /health y las rutas registradas
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Endpoint para recibir mensajes
	mux.HandleFunc("/mensaje", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
			return
		}

		var mensaje Mensaje
		err := json.NewDecoder(r.Body).Decode(&mensaje)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error decodificando mensaje: %v", err), http.StatusBadRequest)
			return
		}

		handler, exists := s.handlers[mensaje.Tipo]
		if !exists {
			http.Error(w, fmt.Sprintf("No hay manejador para el tipo de mensaje %d", mensaje.Tipo), http.StatusBadRequest)
			return
		}

		respuesta, err := handler(&mensaje)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error en el manejador: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(respuesta)
	})

	// Endpoint de healthcheck
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "module": s.Nombre})
	})

	for ruta, handler := range s.rutas {
		mux.Handle(ruta, handler)
	}

	return mux
}

func (s *HTTPServer) httpServer() *http.Server {
	s.once.Do(func() {
		s.server = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", s.IP, s.Puerto),
			Handler: s.Handler(),
		}
	})
	return s.server
}

// Start inicia el servidor HTTP y bloquea hasta que se cierre
func (s *HTTPServer) Start() error {
	server := s.httpServer()

	slog.Info("Servidor HTTP escuchando", "módulo", s.Nombre, "dirección", server.Addr)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown cierra el servidor esperando a las solicitudes en curso
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	slog.Info("Cerrando servidor HTTP", "módulo", s.Nombre)
	return s.httpServer().Shutdown(ctx)
}
