// Package nginx provides a directive-level parser and generator for the
// two configuration fragment types teams submit through the portal:
// upstream pools and location routes.
//
// The parser performs light-weight structural extraction, not
// general-purpose nginx grammar parsing. It captures top-level
// brace-delimited `upstream` and `location` blocks whose bodies contain
// only directives; nested blocks are out of scope by design, and the
// downstream validators assume flat directive bodies.
//
// The generator is the parser's inverse for well-formed input: key/value
// pairs, server lists, block ordering, and directive ordering are all
// preserved on round-trip. Cosmetic whitespace is not.
package nginx
