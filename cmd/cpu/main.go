package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/sisoputnfrba/simulador-memoria/utils"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Error: Uso: ./cpu [archivo_config] [script...]")
		os.Exit(1)
	}

	utils.InicializarLogger("INFO", "CPU")

	// Cargar configuración
	config = utils.CargarConfiguracion[CPUConfig](os.Args[1])
	utils.InicializarLogger(config.LogLevel, "CPU")
	utils.InfoLog.Info("Configuración cargada", "nivel_log", config.LogLevel, "config_path", os.Args[1])

	memoriaClient := utils.NewHTTPClient(config.IPMemory, config.PortMemory, "CPU->Memoria")
	if err := memoriaClient.VerificarConexion(); err != nil {
		utils.ErrorLog.Error("Memoria no disponible", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fallidos := ejecutarScripts(ctx, &clienteMemoria{http: memoriaClient}, os.Args[2:], config.MaxConcurrent)
	if fallidos > 0 {
		utils.ErrorLog.Error("Scripts con error", "cantidad", fallidos)
		os.Exit(1)
	}
	utils.InfoLog.Info("Todos los scripts finalizaron correctamente", "cantidad", len(os.Args[2:]))
}

// ejecutarScripts corre cada script en su propia goroutine y devuelve
// cuántos terminaron con error. Un script fallido no detiene a los demás.
func ejecutarScripts(ctx context.Context, mem memoriaRemota, scripts []string, limite int) int {
	var g errgroup.Group
	if limite > 0 {
		g.SetLimit(limite)
	}

	var fallidos atomic.Int32
	for _, script := range scripts {
		g.Go(func() error {
			if err := ejecutarScript(ctx, mem, script); err != nil {
				utils.ErrorLog.Error("Script finalizado con error", "script", script, "error", err)
				fallidos.Add(1)
				return nil
			}
			utils.InfoLog.Info("Script finalizado", "script", script)
			return nil
		})
	}
	g.Wait()

	return int(fallidos.Load())
}
