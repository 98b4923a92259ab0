/*
Package logpar compiles a human-written log-line pattern into an executable
parser.

LogPar turns a concise pattern string into a parser that, run against a
concrete input line, produces a structured document of named fields or a
precise failure diagnostic. Package structure is as follows:

■ cursor: Package cursor implements the immutable input position shared by
every parser.

■ combinator: Package combinator implements the primitive parser
combinators (sequence, alternative, repetition, map, ...) that everything
else is built from.

■ ir: Package ir implements the intermediate representation a pattern
compiles to: literals, fields, choices and groups.

■ pattern: Package pattern implements the fixed grammar that turns pattern
source text into ir.Pattern.

■ schema: Package schema implements the field-name-to-semantic-type lookup
loaded from configuration.

■ registry: Package registry implements registration and dispatch of
per-type parser builders, and compiles patterns into payload parsers.

■ compiler: Package compiler walks an ir.Pattern, resolving end-tokens and
invoking registered builders to assemble a payload parser.

■ trace: Package trace implements diagnostic accumulation, ordering and
reporting, for both compile-time and run-time failures.

■ document: Package document implements the nested output structure a
payload parser assembles.

■ typeparsers: Package typeparsers implements the concrete per-type parser
builders (numbers, dates, IP addresses, user agents, URLs, text).

■ event: Package event implements the minimal event contract a compiled
parser reads from and writes into.

■ stage: Package stage implements the `parse|<field>` integration surface
used to wire one or more compiled patterns into a normalization stage.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package logpar
