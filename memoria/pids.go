package memoria

// buscarPidLibre devuelve el primer slot que no está en ejecución, o -1.
// No modifica el estado.
func (k *Kernel) buscarPidLibre() int {
	for pid, activo := range k.ejecutando {
		if !activo {
			return pid
		}
	}
	return -1
}

func (k *Kernel) pidValido(pid int) bool {
	return pid >= 0 && pid < len(k.ejecutando) && k.ejecutando[pid]
}
