// Package logging builds foundation loggers for the pnc commands from
// configuration values.
package logging
