// Package logger - единый вывод логов tc-devsync с префиксом, quiet и verbose.
package logger

import "log"

const prefix = "tc-devsync: "

// Quiet при true отключает информационные сообщения (Info); Error выводится всегда.
var Quiet bool

// Verbose при true включает Debug (каждый сэмпл отклонения).
var Verbose bool

// Info выводит сообщение с префиксом, если Quiet == false.
func Info(format string, args ...interface{}) {
	if Quiet {
		return
	}
	log.Printf(prefix+format, args...)
}

// Debug выводит сообщение только при Verbose.
func Debug(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	log.Printf(prefix+"debug: "+format, args...)
}

// Error выводит сообщение об ошибке всегда.
func Error(format string, args ...interface{}) {
	log.Printf(prefix+format, args...)
}
