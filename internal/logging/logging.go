// Package logging contains helpers to write leveled messages to a standard logger.
package logging

import "log"

// PrintlnInfo logs the given values with an INFO prefix.
func PrintlnInfo(logger *log.Logger, v ...interface{}) {
	logger.Println(append([]interface{}{"INFO:"}, v...)...)
}

// PrintlnWarn logs the given values with a WARN prefix.
func PrintlnWarn(logger *log.Logger, v ...interface{}) {
	logger.Println(append([]interface{}{"WARN:"}, v...)...)
}

// PrintlnError logs the given values with an ERROR prefix.
func PrintlnError(logger *log.Logger, v ...interface{}) {
	logger.Println(append([]interface{}{"ERROR:"}, v...)...)
}
