// Package service drives the Tor system service through whichever
// service-supervision mechanism the host provides (systemd or SysV
// init scripts), elevating privileges through sudo when needed.
//
// External commands are always expressed as a program name plus an
// argument list, never as a shell string, and are executed through the
// narrow Runner interface so tests can substitute a fake executor.
package service
