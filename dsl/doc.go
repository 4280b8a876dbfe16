// Package dsl provides a fluent builder layer over the qskema schema model.
//
// Overview
//   - Field adapters: Number()/Bool()/String()/Array(elem) create field
//     schemas; chain Min/Max/MinLen/MaxLen/Pattern/Enum/Refine to attach
//     checks, and Optional()/Default(v) to wrap presence semantics.
//   - Builder API: Object().Field(name, ad)...Build()/MustBuild() assembles a
//     Shape with declaration-ordered fields.
//   - Unions: Union(a, b, ...) builds an ordered first-match union from
//     shapes; Optional(s) wraps a whole schema.
//   - Typed binding: Bind[T](builder) decodes straight into a struct using
//     qskema/query/json tag key resolution.
//
// Entry points
//   - Object(): create an object builder; chain Field then MustBuild()/Build.
//   - Union()/MustUnion(): ordered candidate shapes, declaration order is
//     the resolution order.
//   - Bind[T]/MustBind[T]: typed projection of an object builder.
//
// Design guidelines
//   - Keep public APIs minimal; builders only assemble the root package's
//     tagged variants and never add behavior of their own.
//   - Align semantics of checks between runtime and JSON Schema output.
package dsl
