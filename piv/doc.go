// Package piv implements the binary byte-stuffed protocol used by stepper
// motor controllers on an RS-485 bus.
//
// A packet on the wire is
//
//	Start | stuffed(address | payload | checksum) | Stop
//
// where the checksum is the XOR of the address and every payload byte, and
// stuffing replaces each of Start, Stop and Shift inside the body with Shift
// followed by the byte minus Start. Payloads are arbitrary bytes; their
// meaning belongs to the device drivers built on Client.
package piv
