package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sisoputnfrba/simulador-memoria/memoria"
	"github.com/sisoputnfrba/simulador-memoria/utils"
	"github.com/sisoputnfrba/simulador-memoria/volcados"
)

func main() {
	// Verificar argumentos
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Uso: %s <archivo_configuracion>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ejemplo: %s configs/memoria-config.json\n", os.Args[0])
		os.Exit(1)
	}

	// Inicializar logger ANTES de usarlo
	utils.InicializarLogger("INFO", "Memoria")
	utils.InfoLog.Info("Iniciando módulo Memoria")

	if err := ejecutar(os.Args[1]); err != nil {
		utils.ErrorLog.Error("Memoria finalizada con error", "error", err)
		os.Exit(1)
	}
	utils.InfoLog.Info("Memoria finalizada")
}

func ejecutar(rutaConfig string) error {
	config = utils.CargarConfiguracion[MemoryConfig](rutaConfig)

	// Actualizar logger con configuración del archivo
	utils.InicializarLogger(config.LogLevel, "Memoria")
	utils.InfoLog.Info("Configuración cargada", "nivel_log", config.LogLevel, "config_path", rutaConfig)

	registro := prometheus.NewRegistry()
	registro.MustRegister(collectors.NewGoCollector())

	kernel, err := memoria.NuevoKernel(config.kernel(), utils.InfoLog, registro)
	if err != nil {
		return err
	}

	almacen, err := volcados.Abrir(config.DumpPath)
	if err != nil {
		return err
	}
	defer almacen.Cerrar()
	utils.InfoLog.Info("Almacén de volcados abierto", "ruta", config.DumpPath)

	srv := &servidorMemoria{
		kernel:   kernel,
		volcados: almacen,
		retardo:  config.MemoryDelay,
		abortar:  abortarSimulador,
	}

	modulo := utils.NuevoModulo("Memoria", rutaConfig)
	srv.registrarHandlers(modulo)
	httpServer := modulo.PrepararServidor(config.IPMemory, config.PortMemory)
	httpServer.RegistrarRuta("/metrics", promhttp.HandlerFor(registro, promhttp.HandlerOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(httpServer.Start)
	g.Go(func() error {
		<-ctx.Done()
		apagado, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(apagado)
	})

	utils.InfoLog.Info("Memoria inicializada correctamente", "ip", config.IPMemory, "puerto", config.PortMemory)
	return g.Wait()
}

// abortarSimulador termina el proceso ante una violación de invariante del kernel
func abortarSimulador(causa any) {
	utils.ErrorLog.Error("Falla fatal del simulador, abortando", "causa", causa)
	os.Exit(1)
}
