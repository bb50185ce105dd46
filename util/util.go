package util

import (
	"log"
)

var Verbose = false

type ErrorPolicy int

const (
	IgnoreErr ErrorPolicy = iota
	LogErr
	ParseErr
	FatalErr
)

/**
Print a fatal error and die.
*/
func PrintError(v ...interface{}) {
	log.Fatal(append([]interface{}{"dmpc error:"}, v...)...)
}

/**
Log a message to stderr.
*/
func PrintLog(v ...interface{}) {
	log.Println(append([]interface{}{"dmpc:"}, v...)...)
}

/**
Logs a message only in verbose mode.
*/
func PrintVerbose(v ...interface{}) {
	if Verbose {
		PrintLog(v...)
	}
}

/**
Error handling
*/
func HandleError(err error, policy ErrorPolicy) {
	if err == nil {
		return
	}
	switch policy {
	case IgnoreErr:
	case LogErr:
		PrintLog("encountered an error:", err)
	case ParseErr:
		fallthrough
	case FatalErr:
		PrintError(err)
	}
}
