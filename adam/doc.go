// Package adam implements the ASCII command protocol spoken by ADAM-4000
// style RS-485 field modules.
//
// Every frame is printable text terminated by a carriage return. A module is
// addressed by two uppercase hexadecimal digits:
//
//	query request:  $AA<command>      reply: !AA<payload>
//	write request:  #AA<data>         reply: > | !AA[<data>] | ?
//
// A Client serialises requests on a shared line.Line and validates the
// replies. Device command sets (channel numbers, output ranges and the like)
// are built by callers on top of Query and Write.
package adam
