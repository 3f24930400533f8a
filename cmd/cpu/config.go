package main

type CPUConfig struct {
	IPMemory      string `json:"IP_MEMORIA"`
	PortMemory    int    `json:"PUERTO_MEMORIA"`
	MaxConcurrent int    `json:"MAX_SCRIPTS_CONCURRENTES"` // 0 = sin límite
	LogLevel      string `json:"LOG_LEVEL"`
}

var config *CPUConfig
